package http

import (
	"context"

	"github.com/endpoint-nf-store/internal/domain"
)

// NotificationStore is the minimal interface the router requires from the
// endpoint notification store.
type NotificationStore interface {
	Save(ctx context.Context, dto domain.EndpointNotificationDTO) (*domain.EndpointNotification, error)
	FindByEndpoint(ctx context.Context, kh domain.KeyHash) ([]domain.EndpointNotification, error)
	FindByID(ctx context.Context, kh domain.KeyHash, seqNum int32) (*domain.EndpointNotification, error)
	DeleteByEndpoint(ctx context.Context, kh domain.KeyHash) error
	DeleteByApplication(ctx context.Context, appID string) error
}

// NotificationIndex records which endpoints an application has notifications for.
type NotificationIndex interface {
	Put(ctx context.Context, appID string, kh domain.KeyHash) error
}

// EndpointRegistry maintains the application to endpoint association.
type EndpointRegistry interface {
	Register(ctx context.Context, appID string, kh domain.KeyHash) error
	Unregister(ctx context.Context, appID string, kh domain.KeyHash) error
}
