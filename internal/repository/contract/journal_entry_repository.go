package contract

import (
	"context"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/repository/specification"

	"github.com/google/uuid"
)

type JournalEntryRepository interface {
	Create(ctx context.Context, entry *entity.JournalEntry) error
	Update(ctx context.Context, entry *entity.JournalEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JournalEntry, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// BindToMirror assigns still-unassigned entries to mirrorId and
	// returns how many rows it claimed.
	BindToMirror(ctx context.Context, ids []uuid.UUID, mirrorId uuid.UUID) (int64, error)
}
