package contract

import (
	"context"
	"time"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MirrorRequestRepository interface {
	Create(ctx context.Context, req *entity.MirrorRequest) error
	Update(ctx context.Context, req *entity.MirrorRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MirrorRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// MarkProcessing moves a pending request to processing. It reports false
	// when the request was no longer pending.
	MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type MirrorRepository interface {
	Create(ctx context.Context, mirror *entity.Mirror) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Mirror, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Mirror, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	MarkViewed(ctx context.Context, id uuid.UUID, at time.Time) error
}
