package scope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func Unread(db *gorm.DB) *gorm.DB {
	return db.Where("is_read = ?", false)
}

// OwnedBy restricts a query to one user's rows.
func OwnedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Page applies limit/offset; a non-positive limit leaves the query unbounded.
func Page(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit > 0 {
			db = db.Limit(limit)
		}
		if offset > 0 {
			db = db.Offset(offset)
		}
		return db
	}
}
