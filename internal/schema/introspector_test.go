package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/internal/destination"
	"shopsync/internal/logger"
	pkgerrors "shopsync/pkg/errors"
)

type fakeClient struct {
	schemas map[string]*destination.Schema
	calls   int
}

func (f *fakeClient) RetrieveSchema(_ context.Context, databaseID, _ string) (*destination.Schema, error) {
	f.calls++
	s, ok := f.schemas[databaseID]
	if !ok {
		return nil, pkgerrors.ErrDestinationUnreachable
	}
	return s, nil
}

func (f *fakeClient) CreatePage(_ context.Context, _, _ string, _ destination.Properties) (string, error) {
	return "", nil
}

func TestGetSchemaCachesPerDestination(t *testing.T) {
	client := &fakeClient{schemas: map[string]*destination.Schema{
		"db-1": {DatabaseID: "db-1", Properties: map[string]destination.PropertyType{
			"Name": destination.TypeTitle,
		}},
	}}

	introspector := NewIntrospector(client, nil, 0, logger.NopLogger())

	first, err := introspector.GetSchema(context.Background(), "db-1", "token")
	require.NoError(t, err)
	assert.Equal(t, destination.TypeTitle, first.Properties["Name"])
	assert.Equal(t, 1, client.calls)

	// Cache hit short-circuits the remote call entirely.
	second, err := introspector.GetSchema(context.Background(), "db-1", "token")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, client.calls)
}

func TestGetSchemaUnreachable(t *testing.T) {
	client := &fakeClient{schemas: map[string]*destination.Schema{}}
	introspector := NewIntrospector(client, nil, 0, logger.NopLogger())

	_, err := introspector.GetSchema(context.Background(), "gone", "token")
	assert.True(t, pkgerrors.IsDestinationUnreachable(err))

	// Failures are not cached.
	_, err = introspector.GetSchema(context.Background(), "gone", "token")
	assert.Error(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	client := &fakeClient{schemas: map[string]*destination.Schema{
		"db-1": {DatabaseID: "db-1", Properties: map[string]destination.PropertyType{}},
	}}
	introspector := NewIntrospector(client, nil, 0, logger.NopLogger())

	_, err := introspector.GetSchema(context.Background(), "db-1", "token")
	require.NoError(t, err)

	introspector.Invalidate(context.Background(), "db-1")

	_, err = introspector.GetSchema(context.Background(), "db-1", "token")
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}
