package services

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/patrickmn/go-cache"

	"github.com/username/etsyexporter/src/database"
	"github.com/username/etsyexporter/src/exporters"
	"github.com/username/etsyexporter/src/models"
	"github.com/username/etsyexporter/src/parsers"
	"github.com/username/etsyexporter/src/processors"
)

const fixtureOrdersJSON = `{
	"data": {
		"initial_data": {
			"orders": {
				"orders_search": {
					"orders": [
						{
							"order_id": 100200300,
							"state_id": 100200300,
							"order_date": 1583020800,
							"buyer_id": 77,
							"is_gift": true,
							"gift_message": "Happy birthday",
							"order_url": "https://www.etsy.com/your/orders/100200300",
							"fulfillment": {
								"to_address": {
									"name": "Jane Doe",
									"first_line": "1 Main St",
									"city": "Lyon",
									"zip": "69001",
									"country": "France"
								}
							},
							"notes": {"note_from_buyer": "Leave at door"},
							"payment": {
								"cost_breakdown": {
									"total_cost": {"formatted_value": "", "value": 2599, "currency_code": "EUR"}
								}
							},
							"transactions": [
								{
									"quantity": 2,
									"product": {"title": "Ceramic Mug", "product_identifier": "MUG-01"},
									"variations": []
								}
							]
						},
						{
							"order_id": 400500600,
							"state_id": 400500600,
							"order_date": 1583107200,
							"buyer_id": 88,
							"is_gift": false,
							"transactions": []
						}
					],
					"buyers": [
						{"buyer_id": 77, "name": "Jane Doe", "username": "janed", "email": "jane@example.com"},
						{"buyer_id": 88, "name": "Bob Roe", "username": "bobr", "email": "bob@example.com"}
					]
				}
			}
		}
	}
}`

const fixturePage = `<html><head>
<script>window.unrelated = 1;</script>
<script>Etsy.Context=` + fixtureOrdersJSON + `;</script>
</head><body>
<section aria-label="orders">
	<div class="panel-body-row">
		<input id="order-checkbox-100200300" type="checkbox" name="order-100200300" value="100200300">
		<div class="flag">
			<span data-tooltip="Private note icon"></span>
			<div class="flag-body"><span data-test-id="unsanitize"> Ship early </span></div>
		</div>
		<p><strong>Etsy's IOSS number, IM0400102041</strong></p>
	</div>
	<div class="panel-body-row">
		<input id="order-checkbox-400500600" type="checkbox" value="400500600">
	</div>
</section>
</body></html>`

func newTestService(t *testing.T) ExportService {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })

	locator, err := parsers.GetLocator("etsy")
	if err != nil {
		t.Fatal(err)
	}
	return NewExportService(
		locator,
		processors.NewOrderNormalizer(nil),
		processors.NewDOMEnricher(),
		exporters.NewCSVExporter(),
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	)
}

func TestExtractGetExportRoundTrip(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.ExtractFromPage(strings.NewReader(fixturePage), nil, "orders.html")
	if err != nil {
		t.Fatalf("ExtractFromPage: %v", err)
	}
	if result.Run.OrderCount != 2 || len(result.Records) != 2 {
		t.Fatalf("run.OrderCount = %d, records = %d, want 2/2", result.Run.OrderCount, len(result.Records))
	}

	first := result.Records[0]
	if first.OrderID != "100200300" {
		t.Errorf("record 0 order id = %q", first.OrderID)
	}
	if first.BuyerName != "Jane Doe" || first.BuyerEmail != "jane@example.com" {
		t.Errorf("buyer = %q / %q", first.BuyerName, first.BuyerEmail)
	}
	if first.TotalPrice != "EUR 25.99" {
		t.Errorf("total price = %q", first.TotalPrice)
	}
	if first.PrivateNote1 != "Ship early" {
		t.Errorf("private note 1 = %q", first.PrivateNote1)
	}
	if first.EtsyIossNumber != "Etsy's IOSS number, IM0400102041" {
		t.Errorf("tax registration = %q", first.EtsyIossNumber)
	}
	if result.Records[1].PrivateNote1 != "" {
		t.Errorf("record 1 should have no notes, got %q", result.Records[1].PrivateNote1)
	}

	runs, err := svc.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != result.Run.ID || runs[0].SourceName != "orders.html" {
		t.Fatalf("runs = %+v", runs)
	}

	// cache hit path
	records, err := svc.GetRunRecords(result.Run.ID)
	if err != nil {
		t.Fatalf("GetRunRecords (cached): %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("cached records = %d, want 2", len(records))
	}

	// database path: force a cache miss and verify records survive storage
	svc.(*exportServiceImpl).resultCache.Flush()
	records, err = svc.GetRunRecords(result.Run.ID)
	if err != nil {
		t.Fatalf("GetRunRecords (stored): %v", err)
	}
	if len(records) != 2 || records[0].PrivateNote1 != "Ship early" || records[0].EtsyIossNumber == "" {
		t.Fatalf("stored records lost enrichment: %+v", records[0])
	}

	data, filename, err := svc.ExportCSV(ExportRequest{
		RunID:     result.Run.ID,
		OrderIDs:  []string{"400500600"},
		FieldKeys: []string{"order_id", "buyer_name"},
	})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if !strings.HasPrefix(filename, "etsy-orders-") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("filename = %q", filename)
	}
	lines := strings.Split(string(data), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want header + 1 selected row: %q", len(lines), data)
	}
	if !strings.Contains(lines[1], `400500600`) || !strings.Contains(lines[1], "Bob Roe") {
		t.Errorf("selected row = %q", lines[1])
	}
}

func TestExtractFromPageLiveStateOnly(t *testing.T) {
	svc := newTestService(t)

	page := `<html><body><p>no scripts here</p></body></html>`
	result, err := svc.ExtractFromPage(strings.NewReader(page), json.RawMessage(fixtureOrdersJSON), "orders.html")
	if err != nil {
		t.Fatalf("ExtractFromPage: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}
	// no rendered rows means no enrichment, but slots are still projected
	if result.Records[0].PrivateNote1 != "" || result.Records[0].EtsyIossNumber != "" {
		t.Errorf("unexpected enrichment without rows: %+v", result.Records[0])
	}
}

func TestExtractFromPageNoOrderData(t *testing.T) {
	svc := newTestService(t)

	page := `<html><head><script>window.x = {"orders": []};</script></head><body></body></html>`
	_, err := svc.ExtractFromPage(strings.NewReader(page), nil, "empty.html")
	if !errors.Is(err, ErrNoOrderData) {
		t.Errorf("err = %v, want ErrNoOrderData", err)
	}
}

func TestGetRunRecordsNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetRunRecords("3f1e9c1a-0000-4000-a000-000000000000")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestExportCSVFieldPrecedence(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.ExtractFromPage(strings.NewReader(fixturePage), nil, "orders.html")
	if err != nil {
		t.Fatal(err)
	}

	// no explicit keys, no template name: the seeded default template applies
	data, _, err := svc.ExportCSV(ExportRequest{RunID: result.Run.ID})
	if err != nil {
		t.Fatalf("ExportCSV (default template): %v", err)
	}
	header := strings.Split(string(data), "\r\n")[0]
	if !strings.Contains(header, "Order ID") || !strings.Contains(header, "Full Address") {
		t.Errorf("default template header = %q", header)
	}

	if err := svc.SaveTemplate(models.ExportTemplate{Name: "minimal", FieldKeys: []string{"order_id"}}); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	data, _, err = svc.ExportCSV(ExportRequest{RunID: result.Run.ID, Template: "minimal"})
	if err != nil {
		t.Fatalf("ExportCSV (named template): %v", err)
	}
	if header := strings.Split(string(data), "\r\n")[0]; !strings.HasSuffix(header, "Order ID") {
		t.Errorf("named template header = %q", header)
	}

	_, _, err = svc.ExportCSV(ExportRequest{RunID: result.Run.ID, Template: "missing"})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}

	_, _, err = svc.ExportCSV(ExportRequest{RunID: result.Run.ID, FieldKeys: []string{"nope"}})
	if !errors.Is(err, ErrNoFieldsSelected) {
		t.Errorf("err = %v, want ErrNoFieldsSelected", err)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	svc := newTestService(t)

	if err := svc.SaveTemplate(models.ExportTemplate{Name: "picker", FieldKeys: []string{"order_id", "buyer_name"}}); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	tpl, err := svc.GetTemplate("picker")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if len(tpl.FieldKeys) != 2 || tpl.FieldKeys[0] != "order_id" {
		t.Errorf("template keys = %v", tpl.FieldKeys)
	}

	// overwrite
	if err := svc.SaveTemplate(models.ExportTemplate{Name: "picker", FieldKeys: []string{"total_price"}}); err != nil {
		t.Fatalf("SaveTemplate (overwrite): %v", err)
	}
	tpl, err = svc.GetTemplate("picker")
	if err != nil {
		t.Fatal(err)
	}
	if len(tpl.FieldKeys) != 1 || tpl.FieldKeys[0] != "total_price" {
		t.Errorf("overwritten keys = %v", tpl.FieldKeys)
	}

	if _, err := svc.GetTemplate("ghost"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}
	if err := svc.SaveTemplate(models.ExportTemplate{Name: "broken", FieldKeys: []string{"unknown_key"}}); !errors.Is(err, ErrNoFieldsSelected) {
		t.Errorf("err = %v, want ErrNoFieldsSelected", err)
	}
}
