package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	pkgerrors "shopsync/pkg/errors"
)

type Repository interface {
	FindBindingsByStorefront(ctx context.Context, storefrontID string) ([]Binding, error)
	GetBinding(ctx context.Context, id string) (*Binding, error)
	CreateBinding(ctx context.Context, binding *Binding) error
	UpdateDestinationID(ctx context.Context, tenantID, destinationID string) (bool, error)
	DeleteBinding(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindBindingsByStorefront(ctx context.Context, storefrontID string) ([]Binding, error) {
	query := `
		SELECT id, storefront_id, credential_token, destination_id, created_at, updated_at
		FROM tenant_bindings
		WHERE storefront_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, storefrontID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bindings: %w", err)
	}
	defer rows.Close()

	var bindings []Binding
	for rows.Next() {
		var b Binding
		if err := rows.Scan(
			&b.ID,
			&b.StorefrontID,
			&b.CredentialToken,
			&b.DestinationID,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan binding: %w", err)
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return bindings, nil
}

func (r *PostgresRepository) GetBinding(ctx context.Context, id string) (*Binding, error) {
	query := `
		SELECT id, storefront_id, credential_token, destination_id, created_at, updated_at
		FROM tenant_bindings
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var b Binding
	err := row.Scan(
		&b.ID, &b.StorefrontID, &b.CredentialToken,
		&b.DestinationID, &b.CreatedAt, &b.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("binding %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get binding: %w", err)
	}

	return &b, nil
}

func (r *PostgresRepository) CreateBinding(ctx context.Context, binding *Binding) error {
	if binding.ID == "" {
		binding.ID = uuid.New().String()
	}
	now := time.Now()
	binding.CreatedAt = now
	binding.UpdatedAt = now

	query := `
		INSERT INTO tenant_bindings (id, storefront_id, credential_token, destination_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		binding.ID, binding.StorefrontID, binding.CredentialToken,
		binding.DestinationID, binding.CreatedAt, binding.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("binding %s already exists", binding.ID))
			}
		}
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("binding %s already exists", binding.ID))
		}
		return fmt.Errorf("failed to create binding: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UpdateDestinationID(ctx context.Context, tenantID, destinationID string) (bool, error) {
	query := `
		UPDATE tenant_bindings
		SET destination_id = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, tenantID, destinationID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to update destination id: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *PostgresRepository) DeleteBinding(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tenant_bindings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("binding %s not found", id))
	}

	return nil
}
