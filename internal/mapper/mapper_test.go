package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/internal/constants"
	"shopsync/internal/destination"
	"shopsync/internal/order"
)

func testOrder() *order.Order {
	return &order.Order{
		ID:                5678901234,
		OrderNumber:       1001,
		Name:              "#1001",
		Email:             "jane@example.com",
		CustomerFirstName: "Jane",
		CustomerLastName:  "Doe",
		TotalPrice:        "149.50",
		SubtotalPrice:     "140.00",
		Currency:          "EUR",
		FinancialStatus:   "paid",
		FulfillmentStatus: "partially_fulfilled",
		LineItems: []order.LineItem{
			{Title: "Widget", Quantity: 2, Price: "50.00"},
		},
		ShippingAddress: &order.Address{
			Address1: "1 Main St", City: "Berlin", Country: "Germany", Zip: "10115",
		},
		Note:      "gift wrap please",
		StatusURL: "https://shop.example.com/orders/abc123",
		CreatedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func testSchema() *destination.Schema {
	return &destination.Schema{
		DatabaseID: "db-1",
		Properties: map[string]destination.PropertyType{
			"Name":           destination.TypeTitle,
			"Customer":       destination.TypeRichText,
			"Address":        destination.TypeRichText,
			"Items":          destination.TypeRichText,
			"Note":           destination.TypeRichText,
			"Total Price":    destination.TypeNumber,
			"Subtotal":       destination.TypeNumber,
			"Created":        destination.TypeDate,
			"Currency":       destination.TypeSelect,
			"Fulfillment":    destination.TypeStatus,
			"Email":          destination.TypeEmail,
			"Order Link":     destination.TypeURL,
			"High Value":     destination.TypeCheckbox,
			"Internal Score": destination.TypeNumber, // matches no vocabulary
		},
	}
}

func newTestMapper() *Mapper {
	return New(Config{HighValueThreshold: 100})
}

func TestMapFullSchema(t *testing.T) {
	props := newTestMapper().Map(testOrder(), testSchema())

	assert.Equal(t, destination.Title("#1001"), props["Name"])
	assert.Equal(t, destination.RichText("Jane Doe"), props["Customer"])
	assert.Equal(t, destination.RichText("1 Main St, Berlin, 10115, Germany"), props["Address"])
	assert.Equal(t, destination.RichText("2x Widget"), props["Items"])
	assert.Equal(t, destination.RichText("gift wrap please"), props["Note"])
	assert.Equal(t, destination.Number(149.50), props["Total Price"])
	assert.Equal(t, destination.Number(140.00), props["Subtotal"])
	assert.Equal(t, destination.Date("2026-01-15T10:30:00Z"), props["Created"])
	assert.Equal(t, destination.Select("EUR"), props["Currency"])
	assert.Equal(t, destination.StatusValue("Partially Fulfilled"), props["Fulfillment"])
	assert.Equal(t, destination.Email("jane@example.com"), props["Email"])
	assert.Equal(t, destination.URL("https://shop.example.com/orders/abc123"), props["Order Link"])
	assert.Equal(t, destination.Checkbox(true), props["High Value"])

	// Unmatched properties are omitted, not defaulted.
	_, present := props["Internal Score"]
	assert.False(t, present)
}

func TestMapIsDeterministic(t *testing.T) {
	m := newTestMapper()
	o := testOrder()
	schema := testSchema()

	// Go randomizes map iteration order, so repeated runs exercise
	// different property orders; the mapping must not change.
	first := m.Map(o, schema)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, m.Map(o, schema))
	}
}

func TestMapWithoutTitleProperty(t *testing.T) {
	schema := &destination.Schema{
		DatabaseID: "db-1",
		Properties: map[string]destination.PropertyType{
			"Total Price": destination.TypeNumber,
			"Email":       destination.TypeEmail,
		},
	}

	props := newTestMapper().Map(testOrder(), schema)

	require.Len(t, props, 2)
	assert.Equal(t, destination.Number(149.50), props["Total Price"])
	assert.Equal(t, destination.Email("jane@example.com"), props["Email"])
}

func TestMapUnparseableMoneyIsOmitted(t *testing.T) {
	o := testOrder()
	o.TotalPrice = "abc"
	o.SubtotalPrice = ""

	props := newTestMapper().Map(o, testSchema())

	_, present := props["Total Price"]
	assert.False(t, present)
	_, present = props["Subtotal"]
	assert.False(t, present)
	// The checkbox threshold test also depends on the total.
	_, present = props["High Value"]
	assert.False(t, present)
}

func TestMapSentinelEmailIsOmitted(t *testing.T) {
	o := testOrder()
	o.Email = constants.SentinelEmail

	props := newTestMapper().Map(o, testSchema())

	_, present := props["Email"]
	assert.False(t, present)
}

func TestMapMissingOptionalFields(t *testing.T) {
	o := &order.Order{
		OrderNumber: 1002,
		TotalPrice:  "20.00",
	}

	props := newTestMapper().Map(o, testSchema())

	assert.Equal(t, destination.Title("Order #1002"), props["Name"])
	assert.Equal(t, destination.Checkbox(false), props["High Value"])
	// Status always resolves, defaulting to Unfulfilled.
	assert.Equal(t, destination.StatusValue("Unfulfilled"), props["Fulfillment"])

	for _, absent := range []string{"Customer", "Address", "Items", "Note", "Email", "Order Link", "Created", "Currency"} {
		_, present := props[absent]
		assert.False(t, present, "property %q should be omitted", absent)
	}
}

func TestMapTitleSynthesizedFromNumber(t *testing.T) {
	o := testOrder()
	o.Name = ""

	props := newTestMapper().Map(o, testSchema())
	assert.Equal(t, destination.Title("Order #1001"), props["Name"])
}

func TestMapNilSchema(t *testing.T) {
	props := newTestMapper().Map(testOrder(), nil)
	assert.Empty(t, props)
}
