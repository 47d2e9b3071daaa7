package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/internal/tenant"
	pkgerrors "shopsync/pkg/errors"
)

func setupRepositories(t *testing.T) map[string]tenant.Repository {
	t.Helper()

	infra := SetupTestInfraWithOptions(t, true, true, false)
	ctx := context.Background()

	mongoRepo := tenant.NewMongoRepository(infra.MongoDB)
	err := mongoRepo.(*tenant.MongoRepository).EnsureIndexes(ctx)
	require.NoError(t, err)

	return map[string]tenant.Repository{
		"postgres": tenant.NewPostgresRepository(infra.PostgresDB),
		"mongodb":  mongoRepo,
	}
}

func TestTenantRepository_CreateAndFind(t *testing.T) {
	for name, repo := range setupRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := createTestBinding("alpha-store", "db-111")
			second := createTestBinding("alpha-store", "db-222")
			other := createTestBinding("beta-store", "db-333")

			require.NoError(t, repo.CreateBinding(ctx, first))
			time.Sleep(10 * time.Millisecond)
			require.NoError(t, repo.CreateBinding(ctx, second))
			require.NoError(t, repo.CreateBinding(ctx, other))

			assert.NotEmpty(t, first.ID)
			assert.False(t, first.CreatedAt.IsZero())

			bindings, err := repo.FindBindingsByStorefront(ctx, "alpha-store")
			require.NoError(t, err)
			require.Len(t, bindings, 2)
			assert.Equal(t, "db-111", bindings[0].DestinationID)
			assert.Equal(t, "db-222", bindings[1].DestinationID)

			bindings, err = repo.FindBindingsByStorefront(ctx, "unknown-store")
			require.NoError(t, err)
			assert.Empty(t, bindings)
		})
	}
}

func TestTenantRepository_GetBinding(t *testing.T) {
	for name, repo := range setupRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			binding := createTestBinding("gamma-store", "db-444")
			require.NoError(t, repo.CreateBinding(ctx, binding))

			got, err := repo.GetBinding(ctx, binding.ID)
			require.NoError(t, err)
			assert.Equal(t, binding.StorefrontID, got.StorefrontID)
			assert.Equal(t, binding.CredentialToken, got.CredentialToken)
			assert.Equal(t, binding.DestinationID, got.DestinationID)

			_, err = repo.GetBinding(ctx, "missing-id")
			assert.True(t, pkgerrors.IsNotFound(err))
		})
	}
}

func TestTenantRepository_DuplicatePairRejected(t *testing.T) {
	for name, repo := range setupRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, repo.CreateBinding(ctx, createTestBinding("delta-store", "db-555")))

			err := repo.CreateBinding(ctx, createTestBinding("delta-store", "db-555"))
			require.Error(t, err)
			assert.True(t, pkgerrors.Is(err, pkgerrors.ErrConflict))
		})
	}
}

func TestTenantRepository_UpdateDestinationID(t *testing.T) {
	for name, repo := range setupRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			binding := createTestBinding("epsilon-store", "db-666")
			require.NoError(t, repo.CreateBinding(ctx, binding))

			updated, err := repo.UpdateDestinationID(ctx, binding.ID, "db-777")
			require.NoError(t, err)
			assert.True(t, updated)

			got, err := repo.GetBinding(ctx, binding.ID)
			require.NoError(t, err)
			assert.Equal(t, "db-777", got.DestinationID)

			updated, err = repo.UpdateDestinationID(ctx, "missing-id", "db-888")
			require.NoError(t, err)
			assert.False(t, updated)
		})
	}
}

func TestTenantRepository_DeleteBinding(t *testing.T) {
	for name, repo := range setupRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			binding := createTestBinding("zeta-store", "db-999")
			require.NoError(t, repo.CreateBinding(ctx, binding))

			require.NoError(t, repo.DeleteBinding(ctx, binding.ID))

			_, err := repo.GetBinding(ctx, binding.ID)
			assert.True(t, pkgerrors.IsNotFound(err))

			err = repo.DeleteBinding(ctx, binding.ID)
			assert.True(t, pkgerrors.IsNotFound(err))
		})
	}
}
