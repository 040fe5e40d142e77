package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"oxbow-be/internal/dto"
	"oxbow-be/internal/entity"
	"oxbow-be/internal/pkg/serverutils"
	"oxbow-be/internal/repository/specification"
	"oxbow-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	SyncProfile(ctx context.Context, userId uuid.UUID, req *dto.SyncProfileRequest) (*dto.UserProfileResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NotFound("Profile not found")
	}
	return toUserProfile(user), nil
}

// SyncProfile creates the local user row on first call and refreshes it
// afterwards. The id always comes from the token.
func (s *userService) SyncProfile(ctx context.Context, userId uuid.UUID, req *dto.SyncProfileRequest) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &entity.User{
			Id:        userId,
			Email:     email,
			FullName:  fullName,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		err = uow.UserRepository().Create(ctx, user)
	} else {
		user.Email = email
		user.FullName = fullName
		user.UpdatedAt = time.Now()
		err = uow.UserRepository().Update(ctx, user)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, serverutils.NewAppError(fiber.StatusConflict, "email_taken", "Email is already used by another account")
		}
		return nil, err
	}

	return toUserProfile(user), nil
}

func toUserProfile(u *entity.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}
