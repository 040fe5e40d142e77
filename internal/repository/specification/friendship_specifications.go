package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BetweenUsers matches the friendship row linking two users in either direction.
type BetweenUsers struct {
	A uuid.UUID
	B uuid.UUID
}

func (s BetweenUsers) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?))", s.A, s.B, s.B, s.A)
}

type InvolvingUser struct {
	UserID uuid.UUID
}

func (s InvolvingUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(requester_id = ? OR addressee_id = ?)", s.UserID, s.UserID)
}

type AddressedTo struct {
	UserID uuid.UUID
}

func (s AddressedTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("addressee_id = ?", s.UserID)
}

type ByRecipientID struct {
	RecipientID uuid.UUID
}

func (s ByRecipientID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("recipient_id = ?", s.RecipientID)
}
