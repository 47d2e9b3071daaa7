package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOrder = `{
	"id": 5678901234,
	"order_number": 1001,
	"name": "#1001",
	"email": "jane@example.com",
	"customer": {"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com"},
	"total_price": "149.50",
	"subtotal_price": "140.00",
	"currency": "EUR",
	"financial_status": "paid",
	"fulfillment_status": "partially_fulfilled",
	"line_items": [
		{"title": "Widget", "quantity": 2, "price": "50.00"},
		{"title": "Gadget", "quantity": 1, "price": "40.00"}
	],
	"shipping_address": {"address1": "1 Main St", "city": "Berlin", "province": "", "country": "Germany", "zip": "10115"},
	"note": "gift wrap please",
	"order_status_url": "https://shop.example.com/orders/abc123",
	"created_at": "2026-01-15T10:30:00Z"
}`

func TestParse(t *testing.T) {
	o, err := Parse([]byte(sampleOrder))
	require.NoError(t, err)

	assert.Equal(t, int64(5678901234), o.ID)
	assert.Equal(t, int64(1001), o.OrderNumber)
	assert.Equal(t, "#1001", o.Name)
	assert.Equal(t, "jane@example.com", o.Email)
	assert.Equal(t, "Jane", o.CustomerFirstName)
	assert.Equal(t, "149.50", o.TotalPrice)
	assert.Equal(t, "EUR", o.Currency)
	assert.Equal(t, "partially_fulfilled", o.FulfillmentStatus)
	assert.Len(t, o.LineItems, 2)
	require.NotNil(t, o.ShippingAddress)
	assert.Equal(t, "Berlin", o.ShippingAddress.City)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), o.CreatedAt)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"id": not-json`))
	assert.Error(t, err)
}

func TestParseEmailFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "top-level email wins",
			body: `{"email":"top@example.com","customer":{"email":"cust@example.com"},"contact_email":"contact@example.com"}`,
			want: "top@example.com",
		},
		{
			name: "customer email next",
			body: `{"customer":{"email":"cust@example.com"},"contact_email":"contact@example.com"}`,
			want: "cust@example.com",
		},
		{
			name: "contact email last",
			body: `{"contact_email":"contact@example.com"}`,
			want: "contact@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := Parse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.Email)
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  string
	}{
		{
			name:  "storefront name preferred",
			order: Order{Name: "#1001", OrderNumber: 1001},
			want:  "#1001",
		},
		{
			name:  "synthesized from order number",
			order: Order{OrderNumber: 1001},
			want:  "Order #1001",
		},
		{
			name:  "synthesized from id as last resort",
			order: Order{ID: 42},
			want:  "Order #42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.order.DisplayName())
		})
	}
}

func TestSummaries(t *testing.T) {
	o, err := Parse([]byte(sampleOrder))
	require.NoError(t, err)

	assert.Equal(t, "2x Widget, 1x Gadget", o.LineItemsSummary())
	assert.Equal(t, "1 Main St, Berlin, 10115, Germany", o.AddressSummary())
	assert.Equal(t, "Jane Doe", o.CustomerName())
}

func TestAddressSummaryNilAddress(t *testing.T) {
	o := Order{}
	assert.Equal(t, "", o.AddressSummary())
}
