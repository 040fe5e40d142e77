package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"oxbow-be/internal/model"
	"oxbow-be/internal/pkg/logger"
	"oxbow-be/internal/repository"
	"oxbow-be/pkg/events"
	pktNats "oxbow-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memNotificationRepo struct {
	mu            sync.Mutex
	types         map[string]*model.NotificationType
	users         map[uuid.UUID]*model.User
	notifications []model.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{
		types: map[string]*model.NotificationType{},
		users: map[uuid.UUID]*model.User{},
	}
}

func (r *memNotificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *memNotificationRepo) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memNotificationRepo) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, x := range r.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (r *memNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) GetNotificationTypeByCode(ctx context.Context, code string) (*model.NotificationType, error) {
	t, ok := r.types[code]
	if !ok || !t.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *memNotificationRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type captureDelivery struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]model.Notification
}

func (d *captureDelivery) Send(userID uuid.UUID, n model.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sent == nil {
		d.sent = map[uuid.UUID][]model.Notification{}
	}
	d.sent[userID] = append(d.sent[userID], n)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendMirrorReady(toEmail, name, mirrorTitle, link string) error {
	return m.Called(toEmail, name, mirrorTitle, link).Error(0)
}

func (m *mockMailer) SendNotification(toEmail, subject, message, link string) error {
	return m.Called(toEmail, subject, message, link).Error(0)
}

type stubSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
}

func (s *stubSubscriber) Subscribe(subject, durable string, handler pktNats.EventHandler) error {
	s.subject, s.durable, s.handler = subject, durable, handler
	return nil
}

func seededNotificationRepo() *memNotificationRepo {
	repo := newMemNotificationRepo()
	repo.types[events.MirrorCompleted] = &model.NotificationType{
		Code: events.MirrorCompleted, DisplayName: "Your mirror is ready",
		Template: "\"{title}\" reflects on {entry_count} entries.", SendEmail: true, IsActive: true,
	}
	repo.types[events.MirrorShared] = &model.NotificationType{
		Code: events.MirrorShared, DisplayName: "A mirror was shared with you",
		Template: "A friend shared \"{title}\" with you.", IsActive: true,
	}
	repo.types[events.FriendAccepted] = &model.NotificationType{
		Code: events.FriendAccepted, DisplayName: "Friend request accepted",
		Template: "You are now friends.", IsActive: false,
	}
	return repo
}

func TestNotificationService_StoresAndDeliversEvent(t *testing.T) {
	repo := seededNotificationRepo()
	delivery := &captureDelivery{}
	svc := NewNotificationService(repo, nil, delivery, nil, logger.NewNopLogger())

	owner, sharer, mirrorId := uuid.New(), uuid.New(), uuid.New()
	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type: events.MirrorShared,
		Data: map[string]interface{}{
			"user_id":     owner.String(),
			"actor_id":    sharer.String(),
			"entity_type": "mirror",
			"entity_id":   mirrorId.String(),
			"title":       "Quiet Mornings",
		},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.notifications, 1)
	n := repo.notifications[0]
	assert.Equal(t, owner, n.UserID)
	assert.Equal(t, events.MirrorShared, n.TypeCode)
	assert.Equal(t, "A mirror was shared with you", n.Title)
	assert.Equal(t, `A friend shared "Quiet Mornings" with you.`, n.Message)
	require.NotNil(t, n.ActorID)
	assert.Equal(t, sharer, *n.ActorID)
	require.NotNil(t, n.EntityID)
	assert.Equal(t, mirrorId, *n.EntityID)
	assert.Equal(t, "/mirrors/"+mirrorId.String(), actionURL(n))

	require.Len(t, delivery.sent[owner], 1)
	assert.Equal(t, n.ID, delivery.sent[owner][0].ID)
}

func TestNotificationService_MirrorCompletedSendsEmail(t *testing.T) {
	repo := seededNotificationRepo()
	user := uuid.New()
	repo.users[user] = &model.User{Id: user, Email: "ruth@example.com", FullName: "Ruth"}
	mirrorId := uuid.New()

	mailer := &mockMailer{}
	mailer.On("SendMirrorReady", "ruth@example.com", "Ruth", "Harvest", "/mirrors/"+mirrorId.String()).Return(nil).Once()

	svc := NewNotificationService(repo, nil, nil, mailer, logger.NewNopLogger())
	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type: events.MirrorCompleted,
		Data: map[string]interface{}{
			"user_id":     user.String(),
			"entity_type": "mirror",
			"entity_id":   mirrorId.String(),
			"title":       "Harvest",
			"entry_count": 12,
		},
	})
	require.NoError(t, err)

	mailer.AssertExpectations(t)
	require.Len(t, repo.notifications, 1)
	assert.Equal(t, `"Harvest" reflects on 12 entries.`, repo.notifications[0].Message)
}

func TestNotificationService_EmailFailureDoesNotFailEvent(t *testing.T) {
	repo := seededNotificationRepo()
	user := uuid.New()
	repo.users[user] = &model.User{Id: user, Email: "ruth@example.com", FullName: "Ruth"}

	mailer := &mockMailer{}
	mailer.On("SendMirrorReady", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := NewNotificationService(repo, nil, nil, mailer, logger.NewNopLogger())
	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type: events.MirrorCompleted,
		Data: map[string]interface{}{"user_id": user.String(), "title": "Harvest", "entry_count": 3},
	})
	assert.NoError(t, err)
	assert.Len(t, repo.notifications, 1)
}

func TestNotificationService_SkipsUnknownInactiveAndAnonymous(t *testing.T) {
	repo := seededNotificationRepo()
	delivery := &captureDelivery{}
	svc := NewNotificationService(repo, nil, delivery, nil, logger.NewNopLogger())

	for _, ev := range []events.BaseEvent{
		{Type: "SOMETHING_ELSE", Data: map[string]interface{}{"user_id": uuid.NewString()}},
		{Type: events.FriendAccepted, Data: map[string]interface{}{"user_id": uuid.NewString()}},
		{Type: events.MirrorShared, Data: map[string]interface{}{"title": "no recipient"}},
		{Type: events.MirrorShared, Data: map[string]interface{}{"user_id": "not-a-uuid"}},
	} {
		require.NoError(t, svc.handleEvent(context.Background(), ev), ev.Type)
	}
	assert.Empty(t, repo.notifications)
	assert.Empty(t, delivery.sent)
}

func TestNotificationService_StartSubscribesToAllEvents(t *testing.T) {
	sub := &stubSubscriber{}
	svc := NewNotificationService(seededNotificationRepo(), sub, nil, nil, logger.NewNopLogger())

	require.NoError(t, svc.Start())
	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, notifierDurable, sub.durable)
	require.NotNil(t, sub.handler)

	none := NewNotificationService(seededNotificationRepo(), nil, nil, nil, logger.NewNopLogger())
	assert.Error(t, none.Start())
}

func TestNotificationService_MarkAsReadIsScopedToOwner(t *testing.T) {
	repo := seededNotificationRepo()
	svc := NewNotificationService(repo, nil, nil, nil, logger.NewNopLogger())
	owner := uuid.New()
	require.NoError(t, svc.handleEvent(context.Background(), events.BaseEvent{
		Type: events.MirrorShared,
		Data: map[string]interface{}{"user_id": owner.String(), "title": "x"},
	}))
	id := repo.notifications[0].ID

	err := svc.MarkAsRead(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, repository.ErrNotificationNotFound)

	count, err := svc.GetUnreadCount(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.MarkAsRead(context.Background(), owner, id))
	count, err = svc.GetUnreadCount(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestBuildNotification_MetadataKeepsPayload(t *testing.T) {
	cfg := &model.NotificationType{Code: events.MirrorFailed, DisplayName: "Mirror failed", Template: "{message}"}
	n := buildNotification(uuid.New(), cfg, events.BaseEvent{
		Type: events.MirrorFailed,
		Data: map[string]interface{}{"message": "Please try again.", "error_code": "parse_error"},
	})
	assert.Equal(t, "Please try again.", n.Message)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(n.Metadata, &meta))
	assert.Equal(t, "parse_error", meta["error_code"])
	_, hasURL := meta["action_url"]
	assert.False(t, hasURL)
}
