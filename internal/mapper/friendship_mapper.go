package mapper

import (
	"oxbow-be/internal/entity"
	"oxbow-be/internal/model"
)

type FriendshipMapper struct{}

func NewFriendshipMapper() *FriendshipMapper {
	return &FriendshipMapper{}
}

func (m *FriendshipMapper) ToEntity(f *model.Friendship) *entity.Friendship {
	if f == nil {
		return nil
	}
	return &entity.Friendship{
		Id:          f.Id,
		RequesterId: f.RequesterId,
		AddresseeId: f.AddresseeId,
		Status:      entity.FriendshipStatus(f.Status),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (m *FriendshipMapper) ToModel(f *entity.Friendship) *model.Friendship {
	if f == nil {
		return nil
	}
	return &model.Friendship{
		Id:          f.Id,
		RequesterId: f.RequesterId,
		AddresseeId: f.AddresseeId,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (m *FriendshipMapper) ToEntities(fs []*model.Friendship) []*entity.Friendship {
	entities := make([]*entity.Friendship, len(fs))
	for i, f := range fs {
		entities[i] = m.ToEntity(f)
	}
	return entities
}

func (m *FriendshipMapper) ShareToEntity(s *model.MirrorShare) *entity.MirrorShare {
	if s == nil {
		return nil
	}
	return &entity.MirrorShare{
		Id:          s.Id,
		MirrorId:    s.MirrorId,
		OwnerId:     s.OwnerId,
		RecipientId: s.RecipientId,
		Note:        s.Note,
		CreatedAt:   s.CreatedAt,
	}
}

func (m *FriendshipMapper) ShareToModel(s *entity.MirrorShare) *model.MirrorShare {
	if s == nil {
		return nil
	}
	return &model.MirrorShare{
		Id:          s.Id,
		MirrorId:    s.MirrorId,
		OwnerId:     s.OwnerId,
		RecipientId: s.RecipientId,
		Note:        s.Note,
		CreatedAt:   s.CreatedAt,
	}
}
