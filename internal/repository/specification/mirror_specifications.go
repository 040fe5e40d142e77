package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByStatus struct {
	Statuses []string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Statuses) == 1 {
		return db.Where("status = ?", s.Statuses[0])
	}
	return db.Where("status IN ?", s.Statuses)
}

// InFlight matches requests the worker has not finished.
type InFlight struct{}

func (s InFlight) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", []string{"pending", "processing"})
}

type RequestedAfter struct {
	Since time.Time
}

func (s RequestedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("requested_at >= ?", s.Since)
}

type LatestRequested struct{}

func (s LatestRequested) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("requested_at DESC")
}

type ByRequestID struct {
	RequestID uuid.UUID
}

func (s ByRequestID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("request_id = ?", s.RequestID)
}

// SharedWith matches mirrors that have a share row for the recipient.
type SharedWith struct {
	RecipientID uuid.UUID
}

func (s SharedWith) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN (?)", db.Session(&gorm.Session{NewDB: true}).
		Table("mirror_shares").
		Select("mirror_id").
		Where("recipient_id = ?", s.RecipientID))
}
