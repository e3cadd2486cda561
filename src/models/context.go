package models

import "encoding/json"

// EtsyContext mirrors the page state blob Etsy embeds as `Etsy.Context=...`.
// Depending on page variant the orders container sits either under
// data.initial_data or directly under initial_data, so both shapes are kept.
type EtsyContext struct {
	Data        *ContextData `json:"data,omitempty"`
	InitialData *InitialData `json:"initial_data,omitempty"`
}

type ContextData struct {
	InitialData *InitialData `json:"initial_data,omitempty"`
}

type InitialData struct {
	Orders *OrdersEnvelope `json:"orders,omitempty"`
}

type OrdersEnvelope struct {
	OrdersSearch *OrdersSearch `json:"orders_search,omitempty"`
}

// OrdersSearch is the search-results container holding the raw order list
// and the buyer lookup table.
type OrdersSearch struct {
	Orders []RawOrder `json:"orders"`
	Buyers []Buyer    `json:"buyers"`
}

// OrdersSearch resolves the orders container, preferring the nested
// data.initial_data shape over the top-level initial_data shape. Returns
// (nil, false) when neither shape is populated.
func (c *EtsyContext) OrdersSearch() (*OrdersSearch, bool) {
	if c == nil {
		return nil, false
	}
	candidates := []*InitialData{}
	if c.Data != nil {
		candidates = append(candidates, c.Data.InitialData)
	}
	candidates = append(candidates, c.InitialData)
	for _, initial := range candidates {
		if initial == nil || initial.Orders == nil || initial.Orders.OrdersSearch == nil {
			continue
		}
		return initial.Orders.OrdersSearch, true
	}
	return nil, false
}

// BuyerIndex builds the buyer lookup keyed by stringified buyer id.
// Buyers without an id are skipped.
func (s *OrdersSearch) BuyerIndex() map[string]Buyer {
	index := make(map[string]Buyer, len(s.Buyers))
	for _, b := range s.Buyers {
		if key := IDString(b.BuyerID); key != "" {
			index[key] = b
		}
	}
	return index
}

// IDString renders a JSON identifier (numeric or string) as the canonical
// join-key form. Absent or zero identifiers map to "", matching the
// treatment of missing ids everywhere else in the pipeline.
func IDString(n json.Number) string {
	s := n.String()
	if s == "" || s == "0" {
		return ""
	}
	return s
}
