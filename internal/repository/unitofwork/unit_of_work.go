package unitofwork

import (
	"context"

	"oxbow-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	JournalEntryRepository() contract.JournalEntryRepository
	MirrorRequestRepository() contract.MirrorRequestRepository
	MirrorRepository() contract.MirrorRepository
	FriendshipRepository() contract.FriendshipRepository
	MirrorShareRepository() contract.MirrorShareRepository
}
