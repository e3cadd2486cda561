package models

// Export field keys. The key is the stable wire/storage name; the label is
// the human-readable CSV column header.
const (
	FieldOrderID      = "order_id"
	FieldOrderStateID = "order_state_id"
	FieldOrderDate    = "order_date"

	FieldBuyerName     = "buyer_name"
	FieldBuyerUsername = "buyer_username"
	FieldBuyerEmail    = "buyer_email"

	FieldShippingName    = "shipping_name"
	FieldShippingCountry = "shipping_country"
	FieldShippingState   = "shipping_state"
	FieldShippingCity    = "shipping_city"
	FieldShippingZip     = "shipping_zip"
	FieldShippingPhone   = "shipping_phone"
	FieldAddressFull     = "address_full"

	FieldIsGift      = "is_gift"
	FieldGiftMessage = "gift_message"

	FieldItemsText           = "items_text"
	FieldItemsSKUList        = "items_sku_list"
	FieldItemsQtyList        = "items_qty_list"
	FieldPersonalizationList = "personalization_list"

	FieldNoteFromBuyer = "note_from_buyer"

	FieldPrivateNote1 = "private_note_1"
	FieldPrivateNote2 = "private_note_2"
	FieldPrivateNote3 = "private_note_3"
	FieldPrivateNote4 = "private_note_4"
	FieldPrivateNote5 = "private_note_5"

	FieldTotalPrice    = "total_price"
	FieldItemsPrice    = "items_price"
	FieldShippingPrice = "shipping_price"
	FieldTaxPrice      = "tax_price"
	FieldDiscountPrice = "discount_price"

	FieldOrderURL       = "order_url"
	FieldEtsyIossNumber = "etsy_ioss_number"
)

type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// AllFields is the full catalog in canonical display order.
var AllFields = []Field{
	{FieldOrderID, "Order ID"},
	{FieldOrderStateID, "Order Number"},
	{FieldOrderDate, "Order Date"},

	{FieldBuyerName, "Buyer Name"},
	{FieldBuyerUsername, "Buyer Username"},
	{FieldBuyerEmail, "Buyer Email"},

	{FieldShippingName, "Recipient Name"},
	{FieldShippingCountry, "Country"},
	{FieldShippingState, "State/Province"},
	{FieldShippingCity, "City"},
	{FieldShippingZip, "Zip Code"},
	{FieldShippingPhone, "Phone"},
	{FieldAddressFull, "Full Address"},

	{FieldIsGift, "Is Gift"},
	{FieldGiftMessage, "Gift Message"},

	{FieldItemsText, "Items"},
	{FieldItemsSKUList, "SKU List"},
	{FieldItemsQtyList, "Quantity List"},
	{FieldPersonalizationList, "Personalization List"},

	{FieldNoteFromBuyer, "Note From Buyer"},

	{FieldPrivateNote1, "Private Note 1"},
	{FieldPrivateNote2, "Private Note 2"},
	{FieldPrivateNote3, "Private Note 3"},
	{FieldPrivateNote4, "Private Note 4"},
	{FieldPrivateNote5, "Private Note 5"},

	{FieldTotalPrice, "Total Price"},
	{FieldItemsPrice, "Items Price"},
	{FieldShippingPrice, "Shipping Price"},
	{FieldTaxPrice, "Tax Price"},
	{FieldDiscountPrice, "Discount"},

	{FieldOrderURL, "Order URL"},
	{FieldEtsyIossNumber, "Etsy IOSS/VAT Number"},
}

// DefaultFieldKeys is the field order seeded into the default export
// template.
var DefaultFieldKeys = []string{
	FieldOrderID,
	FieldOrderStateID,
	FieldOrderDate,
	FieldBuyerName,
	FieldBuyerEmail,
	FieldShippingName,
	FieldAddressFull,
	FieldItemsText,
	FieldNoteFromBuyer,
	FieldPrivateNote1,
	FieldTotalPrice,
}

// ExcelTextFields are identifier-like keys always exported through the
// ="value" text-coercion wrapper so spreadsheet software does not mangle
// long numbers (6.42102E+11 style).
var ExcelTextFields = map[string]bool{
	FieldOrderID:       true,
	FieldOrderStateID:  true,
	FieldShippingPhone: true,
	FieldShippingZip:   true,
	FieldItemsSKUList:  true,
	FieldItemsQtyList:  true,
	FieldPrivateNote1:  true,
	FieldPrivateNote2:  true,
	FieldPrivateNote3:  true,
	FieldPrivateNote4:  true,
	FieldPrivateNote5:  true,
}

var fieldsByKey = func() map[string]Field {
	m := make(map[string]Field, len(AllFields))
	for _, f := range AllFields {
		m[f.Key] = f
	}
	return m
}()

// FieldByKey looks a field up by key.
func FieldByKey(key string) (Field, bool) {
	f, ok := fieldsByKey[key]
	return f, ok
}

// ResolveFields maps keys onto catalog fields, preserving the given order
// and silently dropping unknown keys, mirroring how saved templates are
// replayed against the catalog.
func ResolveFields(keys []string) []Field {
	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		if f, ok := fieldsByKey[k]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ExportTemplate is a named, ordered subset of export fields.
type ExportTemplate struct {
	Name      string   `json:"name"`
	FieldKeys []string `json:"field_keys"`
}
