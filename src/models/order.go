package models

import "encoding/json"

// RawOrder is a single order exactly as Etsy embeds it: nested, partially
// populated and untrusted. Numeric-or-string identifiers are json.Number so
// either wire form unmarshals; optional blocks are pointers so absence is
// distinguishable from an empty value.
type RawOrder struct {
	OrderID      json.Number   `json:"order_id"`
	StateID      json.Number   `json:"state_id"`
	OrderStateID json.Number   `json:"order_state_id"`
	OrderDate    int64         `json:"order_date"` // epoch seconds, 0 = unknown
	BuyerID      json.Number   `json:"buyer_id"`
	IsGift       bool          `json:"is_gift"`
	GiftMessage  string        `json:"gift_message"`
	OrderURL     string        `json:"order_url"`
	Fulfillment  *Fulfillment  `json:"fulfillment,omitempty"`
	Notes        *OrderNotes   `json:"notes,omitempty"`
	Payment      *Payment      `json:"payment,omitempty"`
	Transactions []Transaction `json:"transactions"`
}

type Fulfillment struct {
	ToAddress *Address `json:"to_address,omitempty"`
}

type Address struct {
	Name       string `json:"name"`
	FirstLine  string `json:"first_line"`
	SecondLine string `json:"second_line"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type OrderNotes struct {
	NoteFromBuyer string `json:"note_from_buyer"`
}

type Payment struct {
	CostBreakdown *CostBreakdown `json:"cost_breakdown,omitempty"`
}

type CostBreakdown struct {
	TotalCost    *Money `json:"total_cost,omitempty"`
	ItemsCost    *Money `json:"items_cost,omitempty"`
	ShippingCost *Money `json:"shipping_cost,omitempty"`
	TaxCost      *Money `json:"tax_cost,omitempty"`
	Discount     *Money `json:"discount,omitempty"`
}

// Money carries either a pre-formatted display string, a minor-unit amount
// plus currency code, or nothing at all. Value is a pointer so that a
// legitimate zero amount still formats as "0.00" instead of falling through
// to the empty-string default.
type Money struct {
	FormattedValue string `json:"formatted_value"`
	Value          *int64 `json:"value,omitempty"`
	CurrencyCode   string `json:"currency_code"`
}

type Transaction struct {
	Quantity   *int64      `json:"quantity,omitempty"`
	Product    *Product    `json:"product,omitempty"`
	Variations []Variation `json:"variations"`
}

type Product struct {
	Title             string `json:"title"`
	ProductIdentifier string `json:"product_identifier"` // seller SKU, often blank
}

type Variation struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// Buyer is the lookup-table entry referenced by RawOrder.BuyerID. A buyer id
// with no matching entry resolves to the zero Buyer, never an error.
type Buyer struct {
	BuyerID  json.Number `json:"buyer_id"`
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
}
