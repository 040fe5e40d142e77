package unitofwork

import (
	"context"
	"fmt"

	"oxbow-be/internal/repository/contract"
	"oxbow-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) JournalEntryRepository() contract.JournalEntryRepository {
	return implementation.NewJournalEntryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MirrorRequestRepository() contract.MirrorRequestRepository {
	return implementation.NewMirrorRequestRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MirrorRepository() contract.MirrorRepository {
	return implementation.NewMirrorRepository(u.getDB())
}

func (u *UnitOfWorkImpl) FriendshipRepository() contract.FriendshipRepository {
	return implementation.NewFriendshipRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MirrorShareRepository() contract.MirrorShareRepository {
	return implementation.NewMirrorShareRepository(u.getDB())
}
