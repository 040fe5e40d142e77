package model

import (
	"time"

	"github.com/google/uuid"
)

type Friendship struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequesterId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friendships_pair,priority:1"`
	AddresseeId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friendships_pair,priority:2;index"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Friendship) TableName() string {
	return "friendships"
}

type MirrorShare struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MirrorId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_shares_recipient,priority:2"`
	OwnerId     uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_shares_recipient,priority:1"`
	Note        string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (MirrorShare) TableName() string {
	return "mirror_shares"
}
