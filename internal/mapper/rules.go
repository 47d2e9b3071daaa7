package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopsync/internal/constants"
	"shopsync/internal/destination"
	"shopsync/internal/order"
)

// Rule matches one destination property against one order field. A rule
// fires when the property's declared type equals Type and its name
// contains any of Synonyms (case-insensitive); an empty Synonyms list
// matches every property of that type. Extract returns the shaped value
// and whether the order actually has data for it; absence means the
// property is omitted, never explicitly emptied.
type Rule struct {
	Type     destination.PropertyType
	Synonyms []string
	Extract  func(o *order.Order, cfg Config) (interface{}, bool)
}

// Config tunes extractor behavior.
type Config struct {
	// HighValueThreshold drives checkbox properties: true when the order
	// total is at or above the threshold.
	HighValueThreshold float64
}

// fulfillmentStatuses translates raw storefront states into the
// human-capitalized options destinations use. Anything unrecognized maps
// to "Unfulfilled".
var fulfillmentStatuses = map[string]string{
	"fulfilled":           "Fulfilled",
	"partial":             "Partially Fulfilled",
	"partially_fulfilled": "Partially Fulfilled",
	"restocked":           "Restocked",
	"unfulfilled":         "Unfulfilled",
}

const defaultFulfillmentStatus = "Unfulfilled"

// NormalizeFulfillment maps a raw fulfillment state through the lookup
// table, defaulting to "Unfulfilled".
func NormalizeFulfillment(raw string) string {
	if v, ok := fulfillmentStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v
	}
	return defaultFulfillmentStatus
}

// DefaultRules is the fixed matching vocabulary evaluated once per schema
// property. Within the list, first match wins; across properties, every
// rule only reads the order and the current property, so schema iteration
// order cannot change the result.
func DefaultRules() []Rule {
	return []Rule{
		{
			Type:     destination.TypeRichText,
			Synonyms: []string{"customer", "name", "buyer"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				name := o.CustomerName()
				if name == "" || name == constants.SentinelNoName {
					return nil, false
				}
				return destination.RichText(name), true
			},
		},
		{
			Type:     destination.TypeRichText,
			Synonyms: []string{"address", "shipping"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				addr := o.AddressSummary()
				if addr == "" || addr == constants.SentinelAddress {
					return nil, false
				}
				return destination.RichText(addr), true
			},
		},
		{
			Type:     destination.TypeRichText,
			Synonyms: []string{"item", "product", "line"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				summary := o.LineItemsSummary()
				if summary == "" {
					return nil, false
				}
				return destination.RichText(summary), true
			},
		},
		{
			Type:     destination.TypeRichText,
			Synonyms: []string{"note", "comment", "memo"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				if o.Note == "" {
					return nil, false
				}
				return destination.RichText(o.Note), true
			},
		},
		{
			Type:     destination.TypeRichText,
			Synonyms: []string{"payment", "financial"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				if o.FinancialStatus == "" {
					return nil, false
				}
				return destination.RichText(o.FinancialStatus), true
			},
		},
		{
			// Subtotal before the broader total/price match: "Subtotal
			// Price" contains both vocabularies.
			Type:     destination.TypeNumber,
			Synonyms: []string{"subtotal"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				return moneyValue(o.SubtotalPrice)
			},
		},
		{
			Type:     destination.TypeNumber,
			Synonyms: []string{"total", "price", "amount"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				return moneyValue(o.TotalPrice)
			},
		},
		{
			Type:     destination.TypeNumber,
			Synonyms: []string{"order", "number"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				if o.OrderNumber == 0 {
					return nil, false
				}
				return destination.Number(float64(o.OrderNumber)), true
			},
		},
		{
			Type:     destination.TypeDate,
			Synonyms: []string{"created", "date", "placed"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				if o.CreatedAt.IsZero() {
					return nil, false
				}
				return destination.Date(o.CreatedAt.Format(time.RFC3339)), true
			},
		},
		{
			Type:     destination.TypeSelect,
			Synonyms: []string{"currency"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				if o.Currency == "" {
					return nil, false
				}
				return destination.Select(o.Currency), true
			},
		},
		{
			// Any status-typed property receives the normalized
			// fulfillment state.
			Type: destination.TypeStatus,
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				return destination.StatusValue(NormalizeFulfillment(o.FulfillmentStatus)), true
			},
		},
		{
			// The platform writes a placeholder address for manual orders
			// with no customer email; writing it literally would be
			// rejected by destination email validation, so it is omitted.
			Type: destination.TypeEmail,
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				if o.Email == "" || strings.EqualFold(o.Email, constants.SentinelEmail) {
					return nil, false
				}
				return destination.Email(o.Email), true
			},
		},
		{
			Type:     destination.TypeURL,
			Synonyms: []string{"link", "url", "status page"},
			Extract: func(o *order.Order, _ Config) (interface{}, bool) {
				if o.StatusURL == "" {
					return nil, false
				}
				return destination.URL(o.StatusURL), true
			},
		},
		{
			Type: destination.TypeCheckbox,
			Extract: func(o *order.Order, cfg Config) (interface{}, bool) {
				total, ok := parseMoney(o.TotalPrice)
				if !ok {
					return nil, false
				}
				return destination.Checkbox(total >= cfg.HighValueThreshold), true
			},
		},
	}
}

// moneyValue shapes a decimal-as-string amount as a number property.
// Strings that fail to parse are omitted rather than coerced to zero, so a
// broken payload never reports a false total.
func moneyValue(s string) (interface{}, bool) {
	f, ok := parseMoney(s)
	if !ok {
		return nil, false
	}
	return destination.Number(f), true
}

func parseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
