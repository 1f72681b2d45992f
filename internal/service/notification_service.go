package service

import (
	"context"
	"errors"
	"time"

	"medlink/internal/models"
	"medlink/internal/repository"
	"medlink/internal/ws"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier stores a notification for a user and delivers it.
type Notifier interface {
	Notify(userID uint, notifType, title, body string, data map[string]interface{}) error
}

// notify logs instead of failing the caller; notifications never roll back domain writes.
func notify(n Notifier, log *zap.Logger, userID uint, notifType, title, body string, data map[string]interface{}) {
	if n == nil {
		return
	}
	if err := n.Notify(userID, notifType, title, body, data); err != nil {
		log.Warn("notification failed", zap.Uint("user_id", userID), zap.String("type", notifType), zap.Error(err))
	}
}

// Publisher is the delivery queue; *queue.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
	hub      *ws.Hub
	queue    Publisher
	log      *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService, hub *ws.Hub, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm, hub: hub, log: log}
}

// UseQueue routes delivery through the queue; a consumer calling HandleDelivery does the push.
func (s *NotificationService) UseQueue(p Publisher) {
	s.queue = p
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.queue != nil {
		msg, err := json.Marshal(n)
		if err == nil {
			err = s.queue.Publish(ctx, msg)
		}
		if err == nil {
			return nil
		}
		s.log.Warn("notification enqueue failed, delivering inline", zap.Uint("notification_id", n.ID), zap.Error(err))
	}
	s.Deliver(ctx, n)
	return nil
}

// Deliver pushes a stored notification to the user's live sockets and FCM token.
func (s *NotificationService) Deliver(ctx context.Context, n *models.Notification) {
	if s.hub != nil {
		s.hub.SendToUser(n.UserID, map[string]interface{}{"type": "notification", "notification": n})
	}
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(n.UserID)
	if err != nil || u.FCMToken == "" {
		return
	}
	var data map[string]interface{}
	if n.Data != "" {
		_ = json.Unmarshal([]byte(n.Data), &data)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	data["notification_id"] = n.ID
	_ = s.fcm.SendToUser(ctx, u.FCMToken, n.Type, n.Title, n.Body, data)
}

// HandleDelivery is the queue consumer for notification_delivery messages.
func (s *NotificationService) HandleDelivery(ctx context.Context, body []byte) error {
	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return err
	}
	s.Deliver(ctx, &n)
	return nil
}

func (s *NotificationService) List(userID uint, page, limit int) ([]models.Notification, int64, int64, error) {
	list, total, err := s.repo.ListByUserID(userID, page, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.repo.CountUnread(userID)
	return list, total, unread, err
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	err := s.repo.MarkRead(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
