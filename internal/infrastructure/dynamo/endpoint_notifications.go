package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/endpoint-nf-store/internal/domain"
	"go.uber.org/zap"
)

// EndpointIndex resolves the endpoints owned by an application.
type EndpointIndex interface {
	ListEndpointKeyHashes(ctx context.Context, appID string) ([]domain.KeyHash, error)
}

// EndpointNotificationRepo stores endpoint notifications.
// PK: endpoint_key_hash, SK: seq_num. It also clears the by-application index
// table when notifications are deleted by application.
//
// The repo is stateless; concurrent calls are coordinated by DynamoDB alone.
// Backend errors are returned unchanged and nothing is retried.
type EndpointNotificationRepo struct {
	client     API
	tableName  string
	byAppTable string
	endpoints  EndpointIndex
	log        *zap.Logger
}

func NewEndpointNotificationRepo(client API, tableName, byAppTable string, endpoints EndpointIndex, log *zap.Logger) *EndpointNotificationRepo {
	return &EndpointNotificationRepo{
		client:     client,
		tableName:  tableName,
		byAppTable: byAppTable,
		endpoints:  endpoints,
		log:        log.Named("endpoint_notifications"),
	}
}

// Save writes the notification built from dto, overwriting any row with the
// same key hash and sequence number.
func (r *EndpointNotificationRepo) Save(ctx context.Context, dto domain.EndpointNotificationDTO) (n *domain.EndpointNotification, err error) {
	defer observe("save", r.tableName, time.Now(), &err)
	n = domain.NewEndpointNotification(dto)
	r.log.Debug("Save endpoint notification", zap.Stringer("key_hash", n.EndpointKeyHash), zap.Int32("seq_num", n.SeqNum))

	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return nil, fmt.Errorf("marshal endpoint notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("Saved endpoint notification", zap.String("id", n.ID()))
	return n, nil
}

// FindByEndpoint returns every notification of kh in sequence number order.
// An empty kh yields an empty result without querying.
func (r *EndpointNotificationRepo) FindByEndpoint(ctx context.Context, kh domain.KeyHash) (notifications []domain.EndpointNotification, err error) {
	notifications = []domain.EndpointNotification{}
	if kh.IsEmpty() {
		return notifications, nil
	}
	defer observe("find_by_endpoint", r.tableName, time.Now(), &err)
	r.log.Debug("Find endpoint notifications", zap.Stringer("key_hash", kh))

	p := dynamodb.NewQueryPaginator(r.client, partitionQuery(r.tableName, attrEndpointKeyHash, binAttr(kh)))
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.EndpointNotification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		notifications = append(notifications, page...)
	}
	return notifications, nil
}

// FindByID returns the notification stored under (kh, seqNum), or nil when
// there is none.
func (r *EndpointNotificationRepo) FindByID(ctx context.Context, kh domain.KeyHash, seqNum int32) (n *domain.EndpointNotification, err error) {
	defer observe("find_by_id", r.tableName, time.Now(), &err)
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       notificationKey(kh, seqNum),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		r.log.Debug("Endpoint notification not found", zap.String("id", domain.FormatNotificationID(kh, seqNum)))
		return nil, nil
	}
	n = &domain.EndpointNotification{}
	if err := attributevalue.UnmarshalMap(out.Item, n); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteByEndpoint removes every notification of kh. The deletes are sent
// as one non-atomic batch; see writeBatch.
func (r *EndpointNotificationRepo) DeleteByEndpoint(ctx context.Context, kh domain.KeyHash) (err error) {
	if kh.IsEmpty() {
		return nil
	}
	defer observe("delete_by_endpoint", r.tableName, time.Now(), &err)
	r.log.Debug("Delete endpoint notifications", zap.Stringer("key_hash", kh))

	writes, err := r.endpointDeletes(ctx, nil, kh)
	if err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}
	return writeBatch(ctx, r.client, writes)
}

// DeleteByApplication removes the notifications of every endpoint the
// EndpointIndex lists for appID together with appID's rows in the
// by-application index table.
//
// Both groups of deletes go out in the same unordered BatchWriteItem
// requests. This is not a transaction: on error some rows of either table may
// already be gone, and a *PartialBatchError says nothing about which table
// the unprocessed rows belong to. When the index lists no endpoints only the
// by-application rows are deleted.
func (r *EndpointNotificationRepo) DeleteByApplication(ctx context.Context, appID string) (err error) {
	defer observe("delete_by_application", r.tableName, time.Now(), &err)
	r.log.Debug("Delete endpoint notifications by application", zap.String("app_id", appID))

	hashes, err := r.endpoints.ListEndpointKeyHashes(ctx, appID)
	if err != nil {
		return err
	}

	var writes []batchWrite
	seen := make(map[string]struct{}, len(hashes))
	for _, kh := range hashes {
		if _, dup := seen[string(kh)]; dup {
			continue
		}
		seen[string(kh)] = struct{}{}
		if writes, err = r.endpointDeletes(ctx, writes, kh); err != nil {
			return err
		}
	}

	indexKeys, err := queryKeys(ctx, r.client, r.byAppTable, attrApplicationID, strAttr(appID), attrEndpointKeyHash)
	if err != nil {
		return err
	}
	for _, key := range indexKeys {
		writes = append(writes, deleteWrite(r.byAppTable, key))
	}

	r.log.Debug("Deleting by application",
		zap.String("app_id", appID),
		zap.Int("endpoints", len(hashes)),
		zap.Int("rows", len(writes)))
	if len(writes) == 0 {
		return nil
	}
	return writeBatch(ctx, r.client, writes)
}

// endpointDeletes appends a delete for every row of kh to writes.
func (r *EndpointNotificationRepo) endpointDeletes(ctx context.Context, writes []batchWrite, kh domain.KeyHash) ([]batchWrite, error) {
	keys, err := queryKeys(ctx, r.client, r.tableName, attrEndpointKeyHash, binAttr(kh), attrSeqNum)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		writes = append(writes, deleteWrite(r.tableName, key))
	}
	return writes, nil
}
