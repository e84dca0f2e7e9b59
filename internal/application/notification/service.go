package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/endpoint-nf-store/internal/domain"
	"github.com/endpoint-nf-store/internal/pkg/id"
	"github.com/endpoint-nf-store/internal/pkg/validate"
)

type Service interface {
	// Send stores dto and records its application in the by-application index.
	Send(ctx context.Context, dto domain.EndpointNotificationDTO) (*domain.EndpointNotification, error)
	ListByEndpoint(ctx context.Context, keyHash domain.KeyHash) ([]domain.EndpointNotification, error)
	// Get looks a notification up by its "<key hash>::<seq num>" id.
	Get(ctx context.Context, notificationID string) (*domain.EndpointNotification, error)
	DeleteByEndpoint(ctx context.Context, keyHash domain.KeyHash) error
	DeleteByApplication(ctx context.Context, appID string) error
	RegisterEndpoint(ctx context.Context, appID string, keyHash domain.KeyHash) error
	UnregisterEndpoint(ctx context.Context, appID string, keyHash domain.KeyHash) error
}

type notificationStore interface {
	Save(ctx context.Context, dto domain.EndpointNotificationDTO) (*domain.EndpointNotification, error)
	FindByEndpoint(ctx context.Context, kh domain.KeyHash) ([]domain.EndpointNotification, error)
	FindByID(ctx context.Context, kh domain.KeyHash, seqNum int32) (*domain.EndpointNotification, error)
	DeleteByEndpoint(ctx context.Context, kh domain.KeyHash) error
	DeleteByApplication(ctx context.Context, appID string) error
}

type appIndex interface {
	Put(ctx context.Context, appID string, kh domain.KeyHash) error
}

type endpointRegistry interface {
	Register(ctx context.Context, appID string, kh domain.KeyHash) error
	Unregister(ctx context.Context, appID string, kh domain.KeyHash) error
}

type service struct {
	store     notificationStore
	index     appIndex
	endpoints endpointRegistry
	now       func() time.Time
}

func NewService(store notificationStore, index appIndex, endpoints endpointRegistry) Service {
	return &service{store: store, index: index, endpoints: endpoints, now: time.Now}
}

func (s *service) Send(ctx context.Context, dto domain.EndpointNotificationDTO) (*domain.EndpointNotification, error) {
	if err := validate.Struct(dto); err != nil {
		return nil, err
	}
	if dto.Notification.ID == "" {
		dto.Notification.ID = id.At(s.now())
	}
	if dto.Notification.Type == "" {
		dto.Notification.Type = domain.NotificationTypeUser
	}
	if dto.Notification.LastModifyTime.IsZero() {
		dto.Notification.LastModifyTime = s.now().UTC()
	}
	n, err := s.store.Save(ctx, dto)
	if err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	if err := s.index.Put(ctx, n.ApplicationID, n.EndpointKeyHash); err != nil {
		return nil, fmt.Errorf("index notification %s: %w", n.ID(), err)
	}
	return n, nil
}

func (s *service) ListByEndpoint(ctx context.Context, keyHash domain.KeyHash) ([]domain.EndpointNotification, error) {
	return s.store.FindByEndpoint(ctx, keyHash)
}

func (s *service) Get(ctx context.Context, notificationID string) (*domain.EndpointNotification, error) {
	kh, seqNum, err := domain.ParseNotificationID(notificationID)
	if err != nil {
		return nil, err
	}
	n, err := s.store.FindByID(ctx, kh, seqNum)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	return n, nil
}

func (s *service) DeleteByEndpoint(ctx context.Context, keyHash domain.KeyHash) error {
	if keyHash.IsEmpty() {
		return fmt.Errorf("empty key hash: %w", domain.ErrBadRequest)
	}
	return s.store.DeleteByEndpoint(ctx, keyHash)
}

func (s *service) DeleteByApplication(ctx context.Context, appID string) error {
	if appID == "" {
		return fmt.Errorf("empty application id: %w", domain.ErrBadRequest)
	}
	return s.store.DeleteByApplication(ctx, appID)
}

func (s *service) RegisterEndpoint(ctx context.Context, appID string, keyHash domain.KeyHash) error {
	if appID == "" || keyHash.IsEmpty() {
		return fmt.Errorf("application id and key hash are required: %w", domain.ErrBadRequest)
	}
	return s.endpoints.Register(ctx, appID, keyHash)
}

func (s *service) UnregisterEndpoint(ctx context.Context, appID string, keyHash domain.KeyHash) error {
	if appID == "" || keyHash.IsEmpty() {
		return fmt.Errorf("application id and key hash are required: %w", domain.ErrBadRequest)
	}
	return s.endpoints.Unregister(ctx, appID, keyHash)
}
