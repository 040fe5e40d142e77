package mapper

import (
	"time"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/model"

	"gorm.io/gorm"
)

type JournalEntryMapper struct{}

func NewJournalEntryMapper() *JournalEntryMapper {
	return &JournalEntryMapper{}
}

func (m *JournalEntryMapper) ToEntity(e *model.JournalEntry) *entity.JournalEntry {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.JournalEntry{
		Id:        e.Id,
		UserId:    e.UserId,
		Title:     e.Title,
		Content:   e.Content,
		Source:    entity.EntrySource(e.Source),
		Mood:      e.Mood,
		MirrorId:  e.MirrorId,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *JournalEntryMapper) ToModel(e *entity.JournalEntry) *model.JournalEntry {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	source := string(e.Source)
	if source == "" {
		source = string(entity.EntrySourceText)
	}

	return &model.JournalEntry{
		Id:        e.Id,
		UserId:    e.UserId,
		Title:     e.Title,
		Content:   e.Content,
		Source:    source,
		Mood:      e.Mood,
		MirrorId:  e.MirrorId,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *JournalEntryMapper) ToEntities(entries []*model.JournalEntry) []*entity.JournalEntry {
	entities := make([]*entity.JournalEntry, len(entries))
	for i, e := range entries {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
