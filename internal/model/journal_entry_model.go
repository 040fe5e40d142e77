package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JournalEntry struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index:idx_journal_entries_user_mirror,priority:1"`
	Title     string         `gorm:"type:varchar(255)"`
	Content   string         `gorm:"type:text;not null"`
	Source    string         `gorm:"type:varchar(20);not null;default:'text'"`
	Mood      string         `gorm:"type:varchar(50)"`
	MirrorId  *uuid.UUID     `gorm:"type:uuid;index:idx_journal_entries_user_mirror,priority:2"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}
