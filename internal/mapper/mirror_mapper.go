package mapper

import (
	"encoding/json"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/model"

	"gorm.io/datatypes"
)

type MirrorMapper struct{}

func NewMirrorMapper() *MirrorMapper {
	return &MirrorMapper{}
}

func (m *MirrorMapper) ToEntity(mr *model.Mirror) *entity.Mirror {
	if mr == nil {
		return nil
	}
	return &entity.Mirror{
		Id:            mr.Id,
		UserId:        mr.UserId,
		RequestId:     mr.RequestId,
		Title:         mr.Title,
		Content:       json.RawMessage(mr.Content),
		EntryCount:    mr.EntryCount,
		HasBeenViewed: mr.HasBeenViewed,
		ViewedAt:      mr.ViewedAt,
		CreatedAt:     mr.CreatedAt,
	}
}

func (m *MirrorMapper) ToModel(mr *entity.Mirror) *model.Mirror {
	if mr == nil {
		return nil
	}
	return &model.Mirror{
		Id:            mr.Id,
		UserId:        mr.UserId,
		RequestId:     mr.RequestId,
		Title:         mr.Title,
		Content:       datatypes.JSON(mr.Content),
		EntryCount:    mr.EntryCount,
		HasBeenViewed: mr.HasBeenViewed,
		ViewedAt:      mr.ViewedAt,
		CreatedAt:     mr.CreatedAt,
	}
}

func (m *MirrorMapper) ToEntities(mirrors []*model.Mirror) []*entity.Mirror {
	entities := make([]*entity.Mirror, len(mirrors))
	for i, mr := range mirrors {
		entities[i] = m.ToEntity(mr)
	}
	return entities
}

type MirrorRequestMapper struct{}

func NewMirrorRequestMapper() *MirrorRequestMapper {
	return &MirrorRequestMapper{}
}

func (m *MirrorRequestMapper) ToEntity(r *model.MirrorRequest) *entity.MirrorRequest {
	if r == nil {
		return nil
	}
	return &entity.MirrorRequest{
		Id:           r.Id,
		UserId:       r.UserId,
		Status:       entity.MirrorRequestStatus(r.Status),
		ErrorCode:    r.ErrorCode,
		ErrorMessage: r.ErrorMessage,
		MirrorId:     r.MirrorId,
		RequestedAt:  r.RequestedAt,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
	}
}

func (m *MirrorRequestMapper) ToModel(r *entity.MirrorRequest) *model.MirrorRequest {
	if r == nil {
		return nil
	}
	return &model.MirrorRequest{
		Id:           r.Id,
		UserId:       r.UserId,
		Status:       string(r.Status),
		ErrorCode:    r.ErrorCode,
		ErrorMessage: r.ErrorMessage,
		MirrorId:     r.MirrorId,
		RequestedAt:  r.RequestedAt,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
	}
}
