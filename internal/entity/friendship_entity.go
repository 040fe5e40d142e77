package entity

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

type Friendship struct {
	Id          uuid.UUID
	RequesterId uuid.UUID
	AddresseeId uuid.UUID
	Status      FriendshipStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Other returns the side of the friendship that is not userId.
func (f *Friendship) Other(userId uuid.UUID) uuid.UUID {
	if f.RequesterId == userId {
		return f.AddresseeId
	}
	return f.RequesterId
}

type MirrorShare struct {
	Id          uuid.UUID
	MirrorId    uuid.UUID
	OwnerId     uuid.UUID
	RecipientId uuid.UUID
	Note        string
	CreatedAt   time.Time
}
