package dynamo

import (
	"context"
	"testing"

	"github.com/endpoint-nf-store/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointByAppRepo_RegisterListUnregister(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	a, b := domain.KeyHash{0x02}, domain.KeyHash{0x01}

	require.NoError(t, r.endpoints.Register(ctx, "app-1", a))
	require.NoError(t, r.endpoints.Register(ctx, "app-1", b))
	require.NoError(t, r.endpoints.Register(ctx, "app-1", b))
	require.NoError(t, r.endpoints.Register(ctx, "app-2", a))

	hashes, err := r.endpoints.ListEndpointKeyHashes(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.KeyHash{b, a}, hashes)

	require.NoError(t, r.endpoints.Unregister(ctx, "app-1", b))
	hashes, err = r.endpoints.ListEndpointKeyHashes(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.KeyHash{a}, hashes)
}

func TestEndpointByAppRepo_UnknownApplication(t *testing.T) {
	r := newRepos(t)
	hashes, err := r.endpoints.ListEndpointKeyHashes(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, hashes)
}
