package processors

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/username/etsyexporter/src/models"
)

// OrderNormalizer maps one RawOrder onto the flat NormalizedRecord schema.
// Missing nested blocks degrade to empty values, never errors, so every raw
// order yields exactly one record.
type OrderNormalizer struct {
	loc *time.Location
}

func NewOrderNormalizer(loc *time.Location) *OrderNormalizer {
	if loc == nil {
		loc = time.Local
	}
	return &OrderNormalizer{loc: loc}
}

func (n *OrderNormalizer) NormalizeAll(search *models.OrdersSearch) []models.NormalizedRecord {
	if search == nil {
		return nil
	}
	buyers := search.BuyerIndex()
	records := make([]models.NormalizedRecord, 0, len(search.Orders))
	for _, order := range search.Orders {
		records = append(records, n.Normalize(order, buyers))
	}
	return records
}

func (n *OrderNormalizer) Normalize(order models.RawOrder, buyers map[string]models.Buyer) models.NormalizedRecord {
	buyer := buyers[models.IDString(order.BuyerID)] // zero Buyer on miss
	addr := orderAddress(order)
	breakdown := orderCostBreakdown(order)

	var itemLines, skus, qtys, personalizations []string
	for _, tx := range order.Transactions {
		var product models.Product
		if tx.Product != nil {
			product = *tx.Product
		}

		title := decodeEntities(product.Title)
		qty := quantityString(tx.Quantity)
		itemLines = append(itemLines, fmt.Sprintf("%s x%s", title, qty))

		// SKU-less items contribute nothing here while the quantity list
		// keeps every entry, so the two lists can diverge in length.
		// Observed upstream behavior, kept as-is.
		if product.ProductIdentifier != "" {
			skus = append(skus, product.ProductIdentifier)
		}
		qtys = append(qtys, qty)

		for _, v := range tx.Variations {
			if containsPersonal(v.Property) || containsPersonal(v.Value) {
				personalizations = append(personalizations, decodeEntities(v.Value))
			}
		}
	}

	return models.NormalizedRecord{
		OrderID:      models.IDString(order.OrderID),
		OrderStateID: displayOrderNumber(order),
		OrderDate:    n.formatDate(order.OrderDate),

		BuyerName:     decodeEntities(buyer.Name),
		BuyerUsername: buyer.Username,
		BuyerEmail:    buyer.Email,

		ShippingName:    decodeEntities(addr.Name),
		ShippingCountry: decodeEntities(addr.Country),
		ShippingState:   decodeEntities(addr.State),
		ShippingCity:    decodeEntities(addr.City),
		ShippingZip:     addr.Zip,
		ShippingPhone:   addr.Phone,
		AddressFull:     assembleAddress(addr),

		IsGift:      giftFlag(order.IsGift),
		GiftMessage: decodeEntities(order.GiftMessage),

		ItemsText:           strings.Join(itemLines, models.ListSeparator),
		ItemsSKUList:        strings.Join(skus, models.ListSeparator),
		ItemsQtyList:        strings.Join(qtys, models.ListSeparator),
		PersonalizationList: strings.Join(personalizations, models.ListSeparator),

		NoteFromBuyer: decodeEntities(orderBuyerNote(order)),

		OrderURL: order.OrderURL,

		TotalPrice:    moneyString(breakdown.TotalCost),
		ItemsPrice:    moneyString(breakdown.ItemsCost),
		ShippingPrice: moneyString(breakdown.ShippingCost),
		TaxPrice:      moneyString(breakdown.TaxCost),
		DiscountPrice: moneyString(breakdown.Discount),
	}
}

// displayOrderNumber resolves the display order number with explicit
// precedence: state_id when present, then order_state_id, then blank.
func displayOrderNumber(order models.RawOrder) string {
	if s := models.IDString(order.StateID); s != "" {
		return s
	}
	return models.IDString(order.OrderStateID)
}

func orderAddress(order models.RawOrder) models.Address {
	if order.Fulfillment == nil || order.Fulfillment.ToAddress == nil {
		return models.Address{}
	}
	return *order.Fulfillment.ToAddress
}

func orderCostBreakdown(order models.RawOrder) models.CostBreakdown {
	if order.Payment == nil || order.Payment.CostBreakdown == nil {
		return models.CostBreakdown{}
	}
	return *order.Payment.CostBreakdown
}

func orderBuyerNote(order models.RawOrder) string {
	if order.Notes == nil {
		return ""
	}
	return order.Notes.NoteFromBuyer
}

// assembleAddress joins the decoded address components with ", ", dropping
// empty parts. The zip passes through undecoded like every other
// identifier-ish field.
func assembleAddress(addr models.Address) string {
	parts := []string{
		decodeEntities(addr.FirstLine),
		decodeEntities(addr.SecondLine),
		decodeEntities(addr.City),
		decodeEntities(addr.State),
		addr.Zip,
		decodeEntities(addr.Country),
	}
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// moneyString picks the display value for a cost component: a non-empty
// pre-formatted string wins, otherwise the minor-unit amount is rendered
// with two decimals and an optional currency prefix, otherwise blank. An
// empty formatted_value is deliberately treated the same as an absent one.
func moneyString(m *models.Money) string {
	if m == nil {
		return ""
	}
	if m.FormattedValue != "" {
		return m.FormattedValue
	}
	if m.Value == nil {
		return ""
	}
	amount := fmt.Sprintf("%.2f", float64(*m.Value)/100)
	if m.CurrencyCode != "" {
		return m.CurrencyCode + " " + amount
	}
	return amount
}

// formatDate renders epoch seconds as zero-padded YYYY-MM-DD in the export
// timezone. Zero or negative timestamps mean "unknown" and render blank.
func (n *OrderNormalizer) formatDate(epochSeconds int64) string {
	if epochSeconds <= 0 {
		return ""
	}
	return time.Unix(epochSeconds, 0).In(n.loc).Format("2006-01-02")
}

func giftFlag(isGift bool) string {
	if isGift {
		return "YES"
	}
	return "NO"
}

func quantityString(qty *int64) string {
	if qty == nil {
		return ""
	}
	return strconv.FormatInt(*qty, 10)
}

func containsPersonal(s string) bool {
	return strings.Contains(strings.ToLower(s), "personal")
}

// decodeEntities reverses HTML entity escaping on marketplace free text
// (y&#39;all and friends). Identifier and numeric fields skip this.
func decodeEntities(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(s)
}
