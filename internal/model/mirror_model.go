package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MirrorRequest struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID  `gorm:"type:uuid;not null;index:idx_mirror_requests_user_requested,priority:1"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'"`
	ErrorCode    string     `gorm:"type:varchar(50)"`
	ErrorMessage string     `gorm:"type:text"`
	MirrorId     *uuid.UUID `gorm:"type:uuid"`
	RequestedAt  time.Time  `gorm:"not null;index:idx_mirror_requests_user_requested,priority:2"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

func (MirrorRequest) TableName() string {
	return "mirror_requests"
}

type Mirror struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	RequestId     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Title         string         `gorm:"type:varchar(255);not null"`
	Content       datatypes.JSON `gorm:"type:jsonb;not null"`
	EntryCount    int            `gorm:"not null;default:0"`
	HasBeenViewed bool           `gorm:"not null;default:false"`
	ViewedAt      *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
}

func (Mirror) TableName() string {
	return "mirrors"
}
