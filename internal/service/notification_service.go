package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"oxbow-be/internal/model"
	"oxbow-be/internal/pkg/logger"
	"oxbow-be/internal/pkg/mailer"
	"oxbow-be/internal/repository"
	"oxbow-be/pkg/events"
	pktNats "oxbow-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const notifierDurable = "oxbow-notifier"

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
}

// EventSubscriber is satisfied by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber EventSubscriber
	delivery   NotificationDelivery
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	sub EventSubscriber,
	delivery NotificationDelivery,
	mail mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		mailer:     mail,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() error {
	if s.subscriber == nil {
		return errors.New("notification service has no event subscriber")
	}
	if err := s.subscriber.Subscribe(pktNats.SubjectPrefix+">", notifierDurable, s.handleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NotificationService", "Notification service started", nil)
	return nil
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), pktNats.SubjectPrefix)
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", typeCode), nil)

	config, err := s.repo.GetNotificationTypeByCode(ctx, typeCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unregistered or inactive type: nothing to notify.
			return nil
		}
		return err
	}

	userID, ok := recipientOf(event)
	if !ok {
		s.logger.Warn("NotificationService", "Event has no user_id, skipping", map[string]interface{}{"type": typeCode})
		return nil
	}

	notif := buildNotification(userID, config, event)
	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		return err
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}

	if config.SendEmail && s.mailer != nil {
		s.sendEmail(ctx, userID, typeCode, notif)
	}
	return nil
}

// sendEmail never fails the event: the notification is already stored.
func (s *NotificationService) sendEmail(ctx context.Context, userID uuid.UUID, typeCode string, notif model.Notification) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Warn("NotificationService", "Cannot resolve email recipient", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return
	}

	link := actionURL(notif)
	if typeCode == events.MirrorCompleted {
		title, _ := metadataString(notif.Metadata, "title")
		err = s.mailer.SendMirrorReady(user.Email, user.FullName, title, link)
	} else {
		err = s.mailer.SendNotification(user.Email, notif.Title, notif.Message, link)
	}
	if err != nil {
		s.logger.Error("NotificationService", "Failed to send notification email", map[string]interface{}{"user_id": userID, "error": err.Error()})
	}
}

func recipientOf(event events.Event) (uuid.UUID, bool) {
	raw, ok := event.Payload()["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// buildNotification renders the type's template, replacing {key} with
// payload values.
func buildNotification(userID uuid.UUID, config *model.NotificationType, event events.Event) model.Notification {
	msg := config.Template
	payload := event.Payload()

	for k, v := range payload {
		msg = strings.ReplaceAll(msg, "{"+k+"}", fmt.Sprintf("%v", v))
	}

	var actorID *uuid.UUID
	if actorStr, ok := payload["actor_id"].(string); ok {
		if aid, err := uuid.Parse(actorStr); err == nil {
			actorID = &aid
		}
	}

	entityType, _ := payload["entity_type"].(string)
	var entityID *uuid.UUID
	if eidStr, ok := payload["entity_id"].(string); ok {
		if eid, err := uuid.Parse(eidStr); err == nil {
			entityID = &eid
		}
	}

	// Metadata - enrich with action_url for deep linking
	metaMap := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		metaMap[k] = v
	}
	if entityType != "" && entityID != nil {
		metaMap["action_url"] = fmt.Sprintf("/%ss/%s", entityType, entityID.String())
	}
	metaJSON, _ := json.Marshal(metaMap)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		ActorID:    actorID,
		TypeCode:   config.Code,
		Title:      config.DisplayName,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
		IsRead:     false,
	}
}

func metadataString(meta datatypes.JSON, key string) (string, bool) {
	var m map[string]interface{}
	if err := json.Unmarshal(meta, &m); err != nil {
		return "", false
	}
	v, ok := m[key].(string)
	return v, ok
}

func actionURL(n model.Notification) string {
	url, _ := metadataString(n.Metadata, "action_url")
	return url
}

// GetNotifications fetches notifications for a user.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

// GetUnreadCount fetches unread count.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks one of the user's notifications as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

// MarkAllAsRead marks all notifications as read for a user.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
