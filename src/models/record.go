package models

// NoteSlotCount is the number of fixed private-note export columns. Notes
// beyond the last slot are dropped; missing ones leave trailing slots empty.
const NoteSlotCount = 5

// ListSeparator joins multi-value list fields (item lines, SKUs, quantities,
// personalizations). Element text is not escaped; a value containing the
// separator is a known limitation of the export format.
const ListSeparator = " || "

// NormalizedRecord is the flat, schema-total export row built from one
// RawOrder. Every field is a string and defaults to ""; absence of upstream
// data is represented, never omitted. OrderID doubles as the join key for
// DOM enrichment and must stay stable for the whole pipeline run.
type NormalizedRecord struct {
	OrderID      string `json:"order_id"`
	OrderStateID string `json:"order_state_id"`
	OrderDate    string `json:"order_date"`

	BuyerName     string `json:"buyer_name"`
	BuyerUsername string `json:"buyer_username"`
	BuyerEmail    string `json:"buyer_email"`

	ShippingName    string `json:"shipping_name"`
	ShippingCountry string `json:"shipping_country"`
	ShippingState   string `json:"shipping_state"`
	ShippingCity    string `json:"shipping_city"`
	ShippingZip     string `json:"shipping_zip"`
	ShippingPhone   string `json:"shipping_phone"`
	AddressFull     string `json:"address_full"`

	IsGift      string `json:"is_gift"` // "YES" / "NO"
	GiftMessage string `json:"gift_message"`

	ItemsText           string `json:"items_text"`
	ItemsSKUList        string `json:"items_sku_list"`
	ItemsQtyList        string `json:"items_qty_list"`
	PersonalizationList string `json:"personalization_list"`

	NoteFromBuyer string `json:"note_from_buyer"`

	// PrivateNotes is the raw DOM-sourced note list accumulated by the
	// enricher; the five slot fields are its fixed projection.
	PrivateNotes []string `json:"private_notes"`
	PrivateNote1 string   `json:"private_note_1"`
	PrivateNote2 string   `json:"private_note_2"`
	PrivateNote3 string   `json:"private_note_3"`
	PrivateNote4 string   `json:"private_note_4"`
	PrivateNote5 string   `json:"private_note_5"`

	OrderURL string `json:"order_url"`

	TotalPrice    string `json:"total_price"`
	ItemsPrice    string `json:"items_price"`
	ShippingPrice string `json:"shipping_price"`
	TaxPrice      string `json:"tax_price"`
	DiscountPrice string `json:"discount_price"`

	EtsyIossNumber string `json:"etsy_ioss_number"`
}

// ProjectNoteSlots writes the note list onto the five slot fields. Safe to
// call on a record with no notes; every slot is overwritten.
func (r *NormalizedRecord) ProjectNoteSlots() {
	slots := [NoteSlotCount]*string{
		&r.PrivateNote1, &r.PrivateNote2, &r.PrivateNote3, &r.PrivateNote4, &r.PrivateNote5,
	}
	for i, slot := range slots {
		if i < len(r.PrivateNotes) {
			*slot = r.PrivateNotes[i]
		} else {
			*slot = ""
		}
	}
}

// Get returns the export value for a field key, or "" for an unknown key.
// Keeping the mapping here means the CSV exporter never reflects over the
// struct.
func (r *NormalizedRecord) Get(key string) string {
	switch key {
	case FieldOrderID:
		return r.OrderID
	case FieldOrderStateID:
		return r.OrderStateID
	case FieldOrderDate:
		return r.OrderDate
	case FieldBuyerName:
		return r.BuyerName
	case FieldBuyerUsername:
		return r.BuyerUsername
	case FieldBuyerEmail:
		return r.BuyerEmail
	case FieldShippingName:
		return r.ShippingName
	case FieldShippingCountry:
		return r.ShippingCountry
	case FieldShippingState:
		return r.ShippingState
	case FieldShippingCity:
		return r.ShippingCity
	case FieldShippingZip:
		return r.ShippingZip
	case FieldShippingPhone:
		return r.ShippingPhone
	case FieldAddressFull:
		return r.AddressFull
	case FieldIsGift:
		return r.IsGift
	case FieldGiftMessage:
		return r.GiftMessage
	case FieldItemsText:
		return r.ItemsText
	case FieldItemsSKUList:
		return r.ItemsSKUList
	case FieldItemsQtyList:
		return r.ItemsQtyList
	case FieldPersonalizationList:
		return r.PersonalizationList
	case FieldNoteFromBuyer:
		return r.NoteFromBuyer
	case FieldPrivateNote1:
		return r.PrivateNote1
	case FieldPrivateNote2:
		return r.PrivateNote2
	case FieldPrivateNote3:
		return r.PrivateNote3
	case FieldPrivateNote4:
		return r.PrivateNote4
	case FieldPrivateNote5:
		return r.PrivateNote5
	case FieldOrderURL:
		return r.OrderURL
	case FieldTotalPrice:
		return r.TotalPrice
	case FieldItemsPrice:
		return r.ItemsPrice
	case FieldShippingPrice:
		return r.ShippingPrice
	case FieldTaxPrice:
		return r.TaxPrice
	case FieldDiscountPrice:
		return r.DiscountPrice
	case FieldEtsyIossNumber:
		return r.EtsyIossNumber
	}
	return ""
}
