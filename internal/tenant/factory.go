package tenant

import (
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"shopsync/internal/config"
	"shopsync/internal/constants"
)

// NewRepository selects the tenant store backend from configuration.
func NewRepository(cfg config.DatabaseConfig, postgresDB *sql.DB, mongoDB *mongo.Database) (Repository, error) {
	switch cfg.TenantStore {
	case constants.TenantStorePostgres:
		if postgresDB == nil {
			return nil, fmt.Errorf("tenant_store is postgres but no postgres connection is available")
		}
		return NewPostgresRepository(postgresDB), nil
	case constants.TenantStoreMongoDB:
		if mongoDB == nil {
			return nil, fmt.Errorf("tenant_store is mongodb but no mongodb connection is available")
		}
		return NewMongoRepository(mongoDB), nil
	default:
		return nil, fmt.Errorf("unknown tenant store: %s", cfg.TenantStore)
	}
}
