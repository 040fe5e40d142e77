package contract

import (
	"context"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FriendshipRepository interface {
	Create(ctx context.Context, f *entity.Friendship) error
	Update(ctx context.Context, f *entity.Friendship) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Friendship, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Friendship, error)
}

type MirrorShareRepository interface {
	Create(ctx context.Context, share *entity.MirrorShare) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MirrorShare, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MirrorShare, error)
}
