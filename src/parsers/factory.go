package parsers

import (
	"fmt"

	"github.com/username/etsyexporter/src/parsers/etsy"
)

func GetLocator(source string) (ContextLocator, error) {
	switch source {
	case "etsy":
		return etsy.NewLocator(), nil
	default:
		return nil, fmt.Errorf("no context locator available for source: %s", source)
	}
}
