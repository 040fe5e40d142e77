package unitofwork_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/model"
	"oxbow-be/internal/repository/specification"
	"oxbow-be/internal/repository/unitofwork"
	"oxbow-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB connects to DB_CONNECTION_STRING and migrates the schema. The
// tests are skipped when no database is configured.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error)
	require.NoError(t, db.AutoMigrate(model.Tables()...))
	for _, sql := range model.PostMigrationSQL {
		require.NoError(t, db.Exec(sql).Error)
	}
	return db
}

func seedUser(t *testing.T, uow unitofwork.UnitOfWork) uuid.UUID {
	t.Helper()
	u := entity.User{Id: uuid.New(), Email: uuid.NewString() + "@example.com", FullName: "Integration"}
	require.NoError(t, uow.UserRepository().Create(context.Background(), &u))
	return u.Id
}

func TestPostgres_OneInFlightRequestPerUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	user := seedUser(t, uow)

	first := entity.MirrorRequest{Id: uuid.New(), UserId: user, Status: entity.MirrorRequestPending, RequestedAt: time.Now()}
	require.NoError(t, uow.MirrorRequestRepository().Create(ctx, &first))

	second := entity.MirrorRequest{Id: uuid.New(), UserId: user, Status: entity.MirrorRequestPending, RequestedAt: time.Now()}
	err := uow.MirrorRequestRepository().Create(ctx, &second)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	claimed, err := uow.MirrorRequestRepository().MarkProcessing(ctx, first.Id, time.Now())
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = uow.MirrorRequestRepository().MarkProcessing(ctx, first.Id, time.Now())
	require.NoError(t, err)
	assert.False(t, claimed, "a request is claimed once")

	first.Status = entity.MirrorRequestFailed
	first.ErrorCode = entity.MirrorErrorLLM
	require.NoError(t, uow.MirrorRequestRepository().Update(ctx, &first))

	// settled requests free the slot
	require.NoError(t, uow.MirrorRequestRepository().Create(ctx, &second))
}

func TestPostgres_BindToMirrorSkipsAssignedAndDeleted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	user := seedUser(t, uow)

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		e := entity.JournalEntry{Id: uuid.New(), UserId: user, Content: "entry", Source: entity.EntrySourceText, CreatedAt: time.Now()}
		require.NoError(t, uow.JournalEntryRepository().Create(ctx, &e))
		ids[i] = e.Id
	}
	require.NoError(t, uow.JournalEntryRepository().Delete(ctx, ids[2]))

	req := entity.MirrorRequest{Id: uuid.New(), UserId: user, Status: entity.MirrorRequestProcessing, RequestedAt: time.Now()}
	require.NoError(t, uow.MirrorRequestRepository().Create(ctx, &req))

	require.NoError(t, uow.Begin(ctx))
	m := entity.Mirror{Id: uuid.New(), UserId: user, RequestId: req.Id, Title: "t", Content: []byte(`{"screens":[]}`), EntryCount: 2, CreatedAt: time.Now()}
	require.NoError(t, uow.MirrorRepository().Create(ctx, &m))
	bound, err := uow.JournalEntryRepository().BindToMirror(ctx, ids, m.Id)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	assert.Equal(t, int64(2), bound)

	again, err := uow.JournalEntryRepository().BindToMirror(ctx, ids, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, again)

	remaining, err := uow.JournalEntryRepository().Count(ctx, specification.UserOwnedBy{UserID: user}, specification.Unassigned{})
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestPostgres_RollbackDiscardsMirror(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	user := seedUser(t, uow)

	req := entity.MirrorRequest{Id: uuid.New(), UserId: user, Status: entity.MirrorRequestProcessing, RequestedAt: time.Now()}
	require.NoError(t, uow.MirrorRequestRepository().Create(ctx, &req))

	require.NoError(t, uow.Begin(ctx))
	m := entity.Mirror{Id: uuid.New(), UserId: user, RequestId: req.Id, Title: "t", Content: []byte(`{}`), CreatedAt: time.Now()}
	require.NoError(t, uow.MirrorRepository().Create(ctx, &m))
	require.NoError(t, uow.Rollback())

	found, err := uow.MirrorRepository().FindOne(ctx, specification.ByID{ID: m.Id})
	require.NoError(t, err)
	assert.Nil(t, found)
}
