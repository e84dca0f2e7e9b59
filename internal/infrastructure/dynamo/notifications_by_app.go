package dynamo

import (
	"context"
	"time"

	"github.com/endpoint-nf-store/internal/domain"
	"go.uber.org/zap"
)

// NotificationByAppRepo maintains the by-application index of the endpoint
// notifications table: one row per (application, endpoint) that has
// notifications. Its rows are removed by EndpointNotificationRepo.DeleteByApplication.
type NotificationByAppRepo struct {
	table appEndpointTable
	log   *zap.Logger
}

func NewNotificationByAppRepo(client API, tableName string, log *zap.Logger) *NotificationByAppRepo {
	return &NotificationByAppRepo{
		table: appEndpointTable{client: client, tableName: tableName},
		log:   log.Named("notifications_by_app"),
	}
}

// Put is idempotent.
func (r *NotificationByAppRepo) Put(ctx context.Context, appID string, kh domain.KeyHash) (err error) {
	defer observe("index_notification", r.table.tableName, time.Now(), &err)
	r.log.Debug("Index endpoint notifications", zap.String("app_id", appID), zap.Stringer("key_hash", kh))
	return r.table.put(ctx, appID, kh)
}
