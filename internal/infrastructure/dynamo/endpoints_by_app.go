package dynamo

import (
	"context"
	"time"

	"github.com/endpoint-nf-store/internal/domain"
	"go.uber.org/zap"
)

// EndpointByAppRepo lists the endpoints registered under an application.
// It backs the EndpointIndex used by EndpointNotificationRepo.DeleteByApplication.
type EndpointByAppRepo struct {
	table appEndpointTable
	log   *zap.Logger
}

func NewEndpointByAppRepo(client API, tableName string, log *zap.Logger) *EndpointByAppRepo {
	return &EndpointByAppRepo{
		table: appEndpointTable{client: client, tableName: tableName},
		log:   log.Named("endpoints_by_app"),
	}
}

func (r *EndpointByAppRepo) Register(ctx context.Context, appID string, kh domain.KeyHash) (err error) {
	defer observe("register_endpoint", r.table.tableName, time.Now(), &err)
	r.log.Debug("Register endpoint", zap.String("app_id", appID), zap.Stringer("key_hash", kh))
	return r.table.put(ctx, appID, kh)
}

func (r *EndpointByAppRepo) Unregister(ctx context.Context, appID string, kh domain.KeyHash) (err error) {
	defer observe("unregister_endpoint", r.table.tableName, time.Now(), &err)
	r.log.Debug("Unregister endpoint", zap.String("app_id", appID), zap.Stringer("key_hash", kh))
	return r.table.delete(ctx, appID, kh)
}

// ListEndpointKeyHashes returns every endpoint registered under appID.
func (r *EndpointByAppRepo) ListEndpointKeyHashes(ctx context.Context, appID string) (hashes []domain.KeyHash, err error) {
	defer observe("list_endpoints", r.table.tableName, time.Now(), &err)
	hashes, err = r.table.list(ctx, appID)
	if err != nil {
		return nil, err
	}
	r.log.Debug("Listed endpoints", zap.String("app_id", appID), zap.Int("count", len(hashes)))
	return hashes, nil
}
