package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type NotificationType string

const (
	NotificationTypeUser   NotificationType = "USER"
	NotificationTypeSystem NotificationType = "SYSTEM"
)

// idDelimiter separates the key hash from the sequence number in a record id.
const idDelimiter = "::"

// EndpointNotification is a notification addressed to one endpoint.
// PK: endpoint_key_hash, SK: seq_num. Writes with the same key overwrite.
type EndpointNotification struct {
	EndpointKeyHash KeyHash          `json:"endpoint_key_hash" dynamodbav:"endpoint_key_hash"`
	SeqNum          int32            `json:"seq_num" dynamodbav:"seq_num"`
	ApplicationID   string           `json:"application_id" dynamodbav:"application_id"`
	NotificationID  string           `json:"notification_id" dynamodbav:"notification_id"`
	SchemaID        string           `json:"schema_id" dynamodbav:"schema_id"`
	Version         int32            `json:"version" dynamodbav:"nf_version"`
	Type            NotificationType `json:"type" dynamodbav:"nf_type"`
	Body            []byte           `json:"body" dynamodbav:"body"`
	LastModifyTime  time.Time        `json:"last_modify_time" dynamodbav:"last_modify_time"`
	ExpiredAt       time.Time        `json:"expired_at" dynamodbav:"expired_at"`
	TTL             int64            `json:"-" dynamodbav:"ttl,omitempty"` // DynamoDB TTL (Unix seconds)
}

// NotificationDTO is the notification payload as exchanged with callers.
type NotificationDTO struct {
	ID             string           `json:"id"`
	SchemaID       string           `json:"schema_id"`
	ApplicationID  string           `json:"application_id" validate:"required"`
	Version        int32            `json:"version" validate:"gte=0"`
	LastModifyTime time.Time        `json:"last_modify_time"`
	Type           NotificationType `json:"type" validate:"omitempty,oneof=USER SYSTEM"`
	Body           []byte           `json:"body"`
	ExpiredAt      time.Time        `json:"expired_at"`
	SeqNum         int32            `json:"seq_num" validate:"gte=0"`
}

// EndpointNotificationDTO addresses a notification to a single endpoint.
type EndpointNotificationDTO struct {
	ID              string          `json:"id,omitempty"`
	EndpointKeyHash KeyHash         `json:"endpoint_key_hash" validate:"required"`
	Notification    NotificationDTO `json:"notification"`
}

// NewEndpointNotification builds the storage form of dto. Payload fields are
// copied unchanged.
func NewEndpointNotification(dto EndpointNotificationDTO) *EndpointNotification {
	n := &EndpointNotification{
		EndpointKeyHash: dto.EndpointKeyHash,
		SeqNum:          dto.Notification.SeqNum,
		ApplicationID:   dto.Notification.ApplicationID,
		NotificationID:  dto.Notification.ID,
		SchemaID:        dto.Notification.SchemaID,
		Version:         dto.Notification.Version,
		Type:            dto.Notification.Type,
		Body:            dto.Notification.Body,
		LastModifyTime:  dto.Notification.LastModifyTime,
		ExpiredAt:       dto.Notification.ExpiredAt,
	}
	if !n.ExpiredAt.IsZero() {
		n.TTL = n.ExpiredAt.Unix()
	}
	return n
}

// ID returns the record id, "<key hash>::<seq num>".
func (n *EndpointNotification) ID() string {
	return FormatNotificationID(n.EndpointKeyHash, n.SeqNum)
}

func (n *EndpointNotification) ToDTO() EndpointNotificationDTO {
	return EndpointNotificationDTO{
		ID:              n.ID(),
		EndpointKeyHash: n.EndpointKeyHash,
		Notification: NotificationDTO{
			ID:             n.NotificationID,
			SchemaID:       n.SchemaID,
			ApplicationID:  n.ApplicationID,
			Version:        n.Version,
			LastModifyTime: n.LastModifyTime,
			Type:           n.Type,
			Body:           n.Body,
			ExpiredAt:      n.ExpiredAt,
			SeqNum:         n.SeqNum,
		},
	}
}

func FormatNotificationID(keyHash KeyHash, seqNum int32) string {
	return keyHash.String() + idDelimiter + strconv.FormatInt(int64(seqNum), 10)
}

// ParseNotificationID splits a record id into its key hash and sequence number.
func ParseNotificationID(id string) (KeyHash, int32, error) {
	hash, seq, ok := strings.Cut(id, idDelimiter)
	if !ok {
		return nil, 0, fmt.Errorf("malformed notification id %q: %w", id, ErrBadRequest)
	}
	keyHash, err := ParseKeyHash(hash)
	if err != nil {
		return nil, 0, err
	}
	n, err := strconv.ParseInt(seq, 10, 32)
	if err != nil {
		return nil, 0, fmt.Errorf("malformed sequence number in %q: %w", id, ErrBadRequest)
	}
	return keyHash, int32(n), nil
}
