package tenant

import "time"

// Binding connects a tenant to both sides of the relay: the storefront it
// tracks and the workspace database its orders land in. Several tenants may
// bind the same storefront.
type Binding struct {
	ID              string    `json:"id"`
	StorefrontID    string    `json:"storefront_id"`
	CredentialToken string    `json:"-"`
	DestinationID   string    `json:"destination_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateBindingRequest struct {
	StorefrontID    string `json:"storefront_id" binding:"required"`
	CredentialToken string `json:"credential_token" binding:"required"`
	DestinationID   string `json:"destination_id"`
}

type UpdateDestinationRequest struct {
	DestinationID string `json:"destination_id" binding:"required"`
}
