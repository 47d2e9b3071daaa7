package order

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Order is the normalized storefront order record. It is built once from
// the raw webhook payload and never mutated afterwards; the mapper only
// reads from it.
type Order struct {
	ID                int64
	OrderNumber       int64
	Name              string
	Email             string
	CustomerFirstName string
	CustomerLastName  string
	TotalPrice        string
	SubtotalPrice     string
	Currency          string
	FinancialStatus   string
	FulfillmentStatus string
	LineItems         []LineItem
	ShippingAddress   *Address
	Note              string
	StatusURL         string
	CreatedAt         time.Time
}

type LineItem struct {
	Title    string
	Quantity int
	Price    string
}

type Address struct {
	Address1 string
	City     string
	Province string
	Country  string
	Zip      string
}

type payload struct {
	ID                int64      `json:"id"`
	OrderNumber       int64      `json:"order_number"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	ContactEmail      string     `json:"contact_email"`
	Customer          *customer  `json:"customer"`
	TotalPrice        string     `json:"total_price"`
	SubtotalPrice     string     `json:"subtotal_price"`
	Currency          string     `json:"currency"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	LineItems         []lineItem `json:"line_items"`
	ShippingAddress   *address   `json:"shipping_address"`
	Note              string     `json:"note"`
	OrderStatusURL    string     `json:"order_status_url"`
	CreatedAt         string     `json:"created_at"`
}

type customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type lineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type address struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
}

// Parse decodes a raw order webhook body into a normalized Order.
// Callers must have verified the delivery signature against the same raw
// bytes before parsing.
func Parse(raw []byte) (*Order, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode order payload: %w", err)
	}

	o := &Order{
		ID:                p.ID,
		OrderNumber:       p.OrderNumber,
		Name:              strings.TrimSpace(p.Name),
		Email:             strings.TrimSpace(p.Email),
		TotalPrice:        p.TotalPrice,
		SubtotalPrice:     p.SubtotalPrice,
		Currency:          p.Currency,
		FinancialStatus:   p.FinancialStatus,
		FulfillmentStatus: p.FulfillmentStatus,
		Note:              p.Note,
		StatusURL:         p.OrderStatusURL,
	}

	if p.Customer != nil {
		o.CustomerFirstName = strings.TrimSpace(p.Customer.FirstName)
		o.CustomerLastName = strings.TrimSpace(p.Customer.LastName)
		if o.Email == "" {
			o.Email = strings.TrimSpace(p.Customer.Email)
		}
	}
	if o.Email == "" {
		o.Email = strings.TrimSpace(p.ContactEmail)
	}

	for _, li := range p.LineItems {
		o.LineItems = append(o.LineItems, LineItem{
			Title:    li.Title,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}

	if p.ShippingAddress != nil {
		o.ShippingAddress = &Address{
			Address1: p.ShippingAddress.Address1,
			City:     p.ShippingAddress.City,
			Province: p.ShippingAddress.Province,
			Country:  p.ShippingAddress.Country,
			Zip:      p.ShippingAddress.Zip,
		}
	}

	if p.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			o.CreatedAt = ts
		}
	}

	return o, nil
}

// DisplayName is the identifying label written to the destination's title
// property. Falls back to a synthesized "Order #<number>" when the
// storefront did not send a name.
func (o *Order) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	if o.OrderNumber != 0 {
		return fmt.Sprintf("Order #%d", o.OrderNumber)
	}
	return fmt.Sprintf("Order #%d", o.ID)
}

// CustomerName joins first and last name, dropping whichever is empty.
func (o *Order) CustomerName() string {
	name := strings.TrimSpace(o.CustomerFirstName + " " + o.CustomerLastName)
	return name
}

// LineItemsSummary renders line items as "2x Widget, 1x Gadget".
func (o *Order) LineItemsSummary() string {
	parts := make([]string, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		parts = append(parts, fmt.Sprintf("%dx %s", li.Quantity, li.Title))
	}
	return strings.Join(parts, ", ")
}

// AddressSummary joins the shipping address into a single comma-separated
// line, skipping empty segments.
func (o *Order) AddressSummary() string {
	if o.ShippingAddress == nil {
		return ""
	}
	segments := []string{
		o.ShippingAddress.Address1,
		o.ShippingAddress.City,
		o.ShippingAddress.Province,
		o.ShippingAddress.Zip,
		o.ShippingAddress.Country,
	}
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
