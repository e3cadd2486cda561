package parsers

import "github.com/PuerkitoBio/goquery"

// CollectScripts returns the text content of every <script> element in
// document order. The locators scan these for the embedded state marker.
func CollectScripts(doc *goquery.Document) []string {
	var scripts []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		scripts = append(scripts, s.Text())
	})
	return scripts
}
