package tenant

import (
	"context"
	"fmt"
	"strings"

	"shopsync/internal/logger"
)

// Resolver maps a storefront identifier to the tenant bindings that should
// receive its events. The identifier arrives in inconsistent forms (webhook
// header vs stored records), so it is normalized before lookup.
type Resolver struct {
	repo           Repository
	platformSuffix string
	logger         logger.Logger
}

func NewResolver(repo Repository, platformSuffix string, log logger.Logger) *Resolver {
	return &Resolver{
		repo:           repo,
		platformSuffix: platformSuffix,
		logger:         log,
	}
}

// Resolve returns every binding for the storefront. An empty result is a
// valid state, not an error: events can arrive before any tenant finishes
// onboarding.
func (r *Resolver) Resolve(ctx context.Context, storefrontID string) ([]Binding, error) {
	normalized := r.Normalize(storefrontID)
	if normalized == "" {
		return nil, nil
	}

	bindings, err := r.repo.FindBindingsByStorefront(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to look up bindings for %s: %w", normalized, err)
	}

	r.logger.DebugwCtx(ctx, "Resolved storefront bindings",
		"storefront", normalized,
		"bindings", len(bindings),
	)

	return bindings, nil
}

// Normalize lowercases the identifier, trims whitespace and a trailing dot,
// and strips the platform domain suffix so "Shop.MyShopify.com." and "shop"
// resolve identically.
func (r *Resolver) Normalize(storefrontID string) string {
	s := strings.ToLower(strings.TrimSpace(storefrontID))
	s = strings.TrimSuffix(s, ".")
	if r.platformSuffix != "" {
		s = strings.TrimSuffix(s, strings.ToLower(r.platformSuffix))
	}
	return s
}
