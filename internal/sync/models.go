package sync

// InboundEvent is one webhook delivery: the raw bytes plus the headers
// that identify and authenticate it. The body stays unparsed until the
// signature over those exact bytes has been verified.
type InboundEvent struct {
	Body         []byte
	Signature    string
	StorefrontID string
	Topic        string
}

// TenantOutcome reports one tenant's (or the fallback destination's)
// result for a single delivery.
type TenantOutcome struct {
	TenantID      string `json:"tenantId"`
	DestinationID string `json:"destinationId"`
	Success       bool   `json:"success"`
	RecordID      string `json:"recordId,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	// Fallback marks an outcome written to the pre-configured default
	// destination, so callers can tell "synced to default" apart from
	// "synced to the owner's workspace".
	Fallback bool `json:"fallback,omitempty"`
}

// Result aggregates every tenant's outcome for one delivery. Partial
// success is success: the event only fails as a whole on structural
// problems (signature, parse), never on individual tenant failures.
type Result struct {
	Success          bool            `json:"success"`
	SyncedToTenants  int             `json:"syncedToTenants"`
	TotalTenants     int             `json:"totalTenants"`
	PerTenantResults []TenantOutcome `json:"perTenantResults"`
}
