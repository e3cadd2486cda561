package etsy

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/username/etsyexporter/src/logger"
	"github.com/username/etsyexporter/src/models"
)

// ContextMarker is the literal that precedes the embedded JSON state in the
// page scripts.
const ContextMarker = "Etsy.Context="

// Locator extracts the Etsy orders container from a saved orders page.
// Primary path is the live state blob handed in by the caller; when that is
// absent or holds no orders container it falls back to scanning the script
// texts for the ContextMarker and parsing the trailing JSON literal.
type Locator struct{}

func NewLocator() *Locator {
	return &Locator{}
}

func (l *Locator) Locate(liveState json.RawMessage, scripts []string) (*models.OrdersSearch, bool) {
	if ctx := parseLiveState(liveState); ctx != nil {
		if search, ok := ctx.OrdersSearch(); ok {
			logger.L.Debug("orders container resolved from live state blob")
			return search, true
		}
	}

	for i, text := range scripts {
		ctx, ok := parseScriptBlock(text)
		if !ok {
			continue
		}
		if search, ok := ctx.OrdersSearch(); ok {
			logger.L.Debug("orders container resolved from script block", "block", i)
			return search, true
		}
	}

	return nil, false
}

// parseLiveState decodes the caller-provided state blob. A blob that fails
// to decode, or decodes to something without an orders container, simply
// yields nil so the script scan can take over.
func parseLiveState(raw json.RawMessage) *models.EtsyContext {
	if len(raw) == 0 {
		return nil
	}
	var ctx models.EtsyContext
	if err := decode(raw, &ctx); err != nil {
		logger.L.Warn("live state blob is not valid context JSON", "error", err)
		return nil
	}
	return &ctx
}

// parseScriptBlock tries one script text: find the marker, take the trailing
// text, strip a single optional statement terminator, parse as JSON. Parse
// failures are logged and reported as not-found so the caller moves on to
// the next block.
func parseScriptBlock(text string) (*models.EtsyContext, bool) {
	idx := strings.Index(text, ContextMarker)
	if idx == -1 {
		return nil, false
	}

	jsonText := strings.TrimSpace(text[idx+len(ContextMarker):])
	jsonText = strings.TrimSuffix(jsonText, ";")

	var ctx models.EtsyContext
	if err := decode([]byte(jsonText), &ctx); err != nil {
		logger.L.Warn("script block contains marker but JSON parse failed", "error", err)
		return nil, false
	}
	return &ctx, true
}

// decode parses data as exactly one JSON value. Identifiers stay
// json.Number so numeric and string forms survive untouched, and anything
// trailing the value (beyond whitespace) is an error, matching strict
// single-value parse semantics.
func decode(data []byte, ctx *models.EtsyContext) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(ctx); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON value")
	}
	return nil
}
