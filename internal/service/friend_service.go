package service

import (
	"context"
	"strings"
	"time"

	"oxbow-be/internal/dto"
	"oxbow-be/internal/entity"
	"oxbow-be/internal/pkg/logger"
	"oxbow-be/internal/pkg/serverutils"
	"oxbow-be/internal/repository/specification"
	"oxbow-be/internal/repository/unitofwork"
	"oxbow-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IFriendService interface {
	RequestFriend(ctx context.Context, userId uuid.UUID, req *dto.FriendRequest) (*dto.FriendResponse, error)
	AcceptFriend(ctx context.Context, userId uuid.UUID, friendshipId uuid.UUID) (*dto.FriendResponse, error)
	ListFriends(ctx context.Context, userId uuid.UUID) ([]*dto.FriendResponse, error)
	RemoveFriend(ctx context.Context, userId uuid.UUID, friendshipId uuid.UUID) error
}

type friendService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	logger         logger.ILogger
}

func NewFriendService(uowFactory unitofwork.RepositoryFactory, eventPublisher EventPublisher, log logger.ILogger) IFriendService {
	return &friendService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *friendService) RequestFriend(ctx context.Context, userId uuid.UUID, req *dto.FriendRequest) (*dto.FriendResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	target, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: strings.ToLower(strings.TrimSpace(req.Email))})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, serverutils.NotFound("No user with that email")
	}
	if target.Id == userId {
		return nil, serverutils.BadRequest("You cannot add yourself")
	}

	existing, err := uow.FriendshipRepository().FindOne(ctx, specification.BetweenUsers{A: userId, B: target.Id})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// The other side already asked: treat this as acceptance.
		if existing.Status == entity.FriendshipPending && existing.AddresseeId == userId {
			return s.accept(ctx, uow, userId, existing, target)
		}
		return nil, serverutils.NewAppError(fiber.StatusConflict, "friendship_exists", "You are already connected or a request is pending")
	}

	now := time.Now()
	f := entity.Friendship{
		Id:          uuid.New(),
		RequesterId: userId,
		AddresseeId: target.Id,
		Status:      entity.FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uow.FriendshipRepository().Create(ctx, &f); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, "FriendService", events.FriendRequested, map[string]interface{}{
		"user_id":     target.Id.String(),
		"actor_id":    userId.String(),
		"entity_type": "friendship",
		"entity_id":   f.Id.String(),
	})

	return toFriendResponse(&f, userId, target), nil
}

func (s *friendService) AcceptFriend(ctx context.Context, userId uuid.UUID, friendshipId uuid.UUID) (*dto.FriendResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	f, err := uow.FriendshipRepository().FindOne(ctx,
		specification.ByID{ID: friendshipId},
		specification.AddressedTo{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, serverutils.NotFound("Friend request not found")
	}
	if f.Status == entity.FriendshipAccepted {
		other, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: f.Other(userId)})
		if err != nil {
			return nil, err
		}
		return toFriendResponse(f, userId, other), nil
	}

	requester, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: f.RequesterId})
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, uow, userId, f, requester)
}

func (s *friendService) accept(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, f *entity.Friendship, other *entity.User) (*dto.FriendResponse, error) {
	f.Status = entity.FriendshipAccepted
	f.UpdatedAt = time.Now()
	if err := uow.FriendshipRepository().Update(ctx, f); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, "FriendService", events.FriendAccepted, map[string]interface{}{
		"user_id":     f.RequesterId.String(),
		"actor_id":    userId.String(),
		"entity_type": "friendship",
		"entity_id":   f.Id.String(),
	})

	return toFriendResponse(f, userId, other), nil
}

func (s *friendService) ListFriends(ctx context.Context, userId uuid.UUID) ([]*dto.FriendResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	links, err := uow.FriendshipRepository().FindAll(ctx,
		specification.InvolvingUser{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []*dto.FriendResponse{}, nil
	}

	ids := make([]uuid.UUID, len(links))
	for i, f := range links {
		ids[i] = f.Other(userId)
	}
	users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.User, len(users))
	for _, u := range users {
		byId[u.Id] = u
	}

	res := make([]*dto.FriendResponse, 0, len(links))
	for _, f := range links {
		res = append(res, toFriendResponse(f, userId, byId[f.Other(userId)]))
	}
	return res, nil
}

func (s *friendService) RemoveFriend(ctx context.Context, userId uuid.UUID, friendshipId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	f, err := uow.FriendshipRepository().FindOne(ctx,
		specification.ByID{ID: friendshipId},
		specification.InvolvingUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if f == nil {
		return serverutils.NotFound("Friend not found")
	}
	return uow.FriendshipRepository().Delete(ctx, f.Id)
}

func toFriendResponse(f *entity.Friendship, userId uuid.UUID, other *entity.User) *dto.FriendResponse {
	res := &dto.FriendResponse{
		FriendshipId: f.Id,
		UserId:       f.Other(userId),
		Status:       string(f.Status),
		Incoming:     f.AddresseeId == userId,
		Since:        f.UpdatedAt,
	}
	if other != nil {
		res.Email = other.Email
		res.FullName = other.FullName
	}
	return res
}
