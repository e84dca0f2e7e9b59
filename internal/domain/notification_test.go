package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDTO() EndpointNotificationDTO {
	return EndpointNotificationDTO{
		EndpointKeyHash: KeyHash{0xf0, 0x07, 0x33, 0x9e},
		Notification: NotificationDTO{
			ID:             "01HX0000000000000000000000",
			SchemaID:       "schema-1",
			ApplicationID:  "app-1",
			Version:        2,
			LastModifyTime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Type:           NotificationTypeSystem,
			Body:           []byte(`{"hello":"world"}`),
			ExpiredAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			SeqNum:         7,
		},
	}
}

func TestNewEndpointNotification_CopiesPayload(t *testing.T) {
	dto := sampleDTO()
	n := NewEndpointNotification(dto)

	assert.Equal(t, dto.EndpointKeyHash, n.EndpointKeyHash)
	assert.Equal(t, int32(7), n.SeqNum)
	assert.Equal(t, "app-1", n.ApplicationID)
	assert.Equal(t, dto.Notification.Body, n.Body)
	assert.Equal(t, dto.Notification.ExpiredAt.Unix(), n.TTL)
}

func TestNewEndpointNotification_NoExpiryNoTTL(t *testing.T) {
	dto := sampleDTO()
	dto.Notification.ExpiredAt = time.Time{}
	assert.Zero(t, NewEndpointNotification(dto).TTL)
}

func TestEndpointNotification_DTORoundTrip(t *testing.T) {
	dto := sampleDTO()
	n := NewEndpointNotification(dto)
	out := n.ToDTO()

	assert.Equal(t, "0xf007339e::7", out.ID)
	out.ID = ""
	assert.Equal(t, dto, out)
	assert.Equal(t, n, NewEndpointNotification(n.ToDTO()))
}

func TestParseNotificationID(t *testing.T) {
	kh, seq, err := ParseNotificationID("0xf007339e::7")
	require.NoError(t, err)
	assert.Equal(t, KeyHash{0xf0, 0x07, 0x33, 0x9e}, kh)
	assert.Equal(t, int32(7), seq)
	assert.Equal(t, "0xf007339e::7", FormatNotificationID(kh, seq))
}

func TestParseNotificationID_Malformed(t *testing.T) {
	for _, in := range []string{"", "0xab", "0xab::", "0xab::x", "::1", "0xab::99999999999"} {
		_, _, err := ParseNotificationID(in)
		assert.ErrorIs(t, err, ErrBadRequest, in)
	}
}
