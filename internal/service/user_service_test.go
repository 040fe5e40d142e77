package service

import (
	"context"
	"testing"

	"oxbow-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SyncCreatesThenUpdates(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(&memFactory{store: store})
	id := uuid.New()

	_, err := svc.GetProfile(context.Background(), id)
	status, _ := appErrorCode(t, err)
	assert.Equal(t, 404, status)

	res, err := svc.SyncProfile(context.Background(), id, &dto.SyncProfileRequest{FullName: " Ruth ", Email: "Ruth@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, id, res.Id)
	assert.Equal(t, "ruth@example.com", res.Email)
	assert.Equal(t, "Ruth", res.FullName)

	res, err = svc.SyncProfile(context.Background(), id, &dto.SyncProfileRequest{FullName: "Ruth B", Email: "ruth@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ruth B", res.FullName)
	assert.Len(t, store.users, 1)
}

func TestUserService_SyncRejectsTakenEmail(t *testing.T) {
	store := newMemStore()
	store.addUser("naomi@example.com", "Naomi")
	svc := NewUserService(&memFactory{store: store})

	_, err := svc.SyncProfile(context.Background(), uuid.New(), &dto.SyncProfileRequest{FullName: "Imposter", Email: "naomi@example.com"})
	status, code := appErrorCode(t, err)
	assert.Equal(t, 409, status)
	assert.Equal(t, "email_taken", code)
}
