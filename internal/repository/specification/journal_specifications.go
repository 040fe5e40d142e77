package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unassigned matches journal entries not yet consumed by a mirror.
type Unassigned struct{}

func (s Unassigned) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("mirror_id IS NULL")
}

type ByMirrorID struct {
	MirrorID uuid.UUID
}

func (s ByMirrorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("mirror_id = ?", s.MirrorID)
}

type CreatedAfter struct {
	Since time.Time
}

func (s CreatedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}
