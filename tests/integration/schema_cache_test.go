package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/internal/constants"
	"shopsync/internal/destination"
	"shopsync/internal/schema"
)

type countingClient struct {
	mu      sync.Mutex
	calls   int
	schemas map[string]*destination.Schema
}

func (c *countingClient) RetrieveSchema(ctx context.Context, databaseID, token string) (*destination.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.schemas[databaseID], nil
}

func (c *countingClient) CreatePage(ctx context.Context, databaseID, token string, props destination.Properties) (string, error) {
	return "page-1", nil
}

func (c *countingClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestSchemaCache_RedisTierSurvivesRestart(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)
	ctx := context.Background()

	client := &countingClient{schemas: map[string]*destination.Schema{
		"db-1": {
			DatabaseID: "db-1",
			Properties: map[string]destination.PropertyType{
				"Order":  destination.TypeTitle,
				"Amount": destination.TypeNumber,
			},
		},
	}}

	first := schema.NewIntrospector(client, infra.RedisClient, 60, createTestLogger())

	got, err := first.GetSchema(ctx, "db-1", "token")
	require.NoError(t, err)
	assert.Equal(t, destination.TypeNumber, got.Properties["Amount"])
	assert.Equal(t, 1, client.callCount())

	_, err = first.GetSchema(ctx, "db-1", "token")
	require.NoError(t, err)
	assert.Equal(t, 1, client.callCount(), "second lookup should hit the local tier")

	exists, err := infra.RedisClient.Exists(ctx, constants.CacheKeyPrefixSchema+"db-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	// A fresh introspector simulates a process restart: the local tier is
	// empty but Redis still holds the schema.
	second := schema.NewIntrospector(client, infra.RedisClient, 60, createTestLogger())

	got, err = second.GetSchema(ctx, "db-1", "token")
	require.NoError(t, err)
	assert.Equal(t, destination.TypeTitle, got.Properties["Order"])
	assert.Equal(t, 1, client.callCount(), "restart should be served from redis")
}

func TestSchemaCache_InvalidateDropsBothTiers(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)
	ctx := context.Background()

	client := &countingClient{schemas: map[string]*destination.Schema{
		"db-2": {
			DatabaseID: "db-2",
			Properties: map[string]destination.PropertyType{"Name": destination.TypeTitle},
		},
	}}

	introspector := schema.NewIntrospector(client, infra.RedisClient, 60, createTestLogger())

	_, err := introspector.GetSchema(ctx, "db-2", "token")
	require.NoError(t, err)
	require.Equal(t, 1, client.callCount())

	introspector.Invalidate(ctx, "db-2")

	exists, err := infra.RedisClient.Exists(ctx, constants.CacheKeyPrefixSchema+"db-2").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	_, err = introspector.GetSchema(ctx, "db-2", "token")
	require.NoError(t, err)
	assert.Equal(t, 2, client.callCount(), "invalidate should force a re-introspection")
}
