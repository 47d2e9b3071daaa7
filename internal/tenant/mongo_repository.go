package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgerrors "shopsync/pkg/errors"
)

const bindingsCollection = "tenant_bindings"

type mongoBinding struct {
	ID              string    `bson:"_id"`
	StorefrontID    string    `bson:"storefront_id"`
	CredentialToken string    `bson:"credential_token"`
	DestinationID   string    `bson:"destination_id"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &MongoRepository{collection: db.Collection(bindingsCollection)}
}

// EnsureIndexes creates the storefront lookup index and the uniqueness
// constraint on storefront/destination pairs. Safe to call on every boot;
// Mongo treats identical index specs as a no-op.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "storefront_id", Value: 1}},
			Options: options.Index().SetName("idx_storefront_id"),
		},
		{
			Keys:    bson.D{{Key: "storefront_id", Value: 1}, {Key: "destination_id", Value: 1}},
			Options: options.Index().SetName("idx_storefront_destination").SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create binding indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindBindingsByStorefront(ctx context.Context, storefrontID string) ([]Binding, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"storefront_id": storefrontID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query bindings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoBinding
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bindings: %w", err)
	}

	var bindings []Binding
	for _, d := range docs {
		bindings = append(bindings, d.toBinding())
	}
	return bindings, nil
}

func (r *MongoRepository) GetBinding(ctx context.Context, id string) (*Binding, error) {
	var d mongoBinding
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("binding %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get binding: %w", err)
	}

	b := d.toBinding()
	return &b, nil
}

func (r *MongoRepository) CreateBinding(ctx context.Context, binding *Binding) error {
	if binding.ID == "" {
		binding.ID = uuid.New().String()
	}
	now := time.Now()
	binding.CreatedAt = now
	binding.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, mongoBinding{
		ID:              binding.ID,
		StorefrontID:    binding.StorefrontID,
		CredentialToken: binding.CredentialToken,
		DestinationID:   binding.DestinationID,
		CreatedAt:       binding.CreatedAt,
		UpdatedAt:       binding.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("binding %s already exists", binding.ID))
	}
	if err != nil {
		return fmt.Errorf("failed to create binding: %w", err)
	}

	return nil
}

func (r *MongoRepository) UpdateDestinationID(ctx context.Context, tenantID, destinationID string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": tenantID},
		bson.M{"$set": bson.M{
			"destination_id": destinationID,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update destination id: %w", err)
	}

	return result.MatchedCount > 0, nil
}

func (r *MongoRepository) DeleteBinding(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}
	if result.DeletedCount == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("binding %s not found", id))
	}

	return nil
}

func (d mongoBinding) toBinding() Binding {
	return Binding{
		ID:              d.ID,
		StorefrontID:    d.StorefrontID,
		CredentialToken: d.CredentialToken,
		DestinationID:   d.DestinationID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
