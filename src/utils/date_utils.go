package utils

import (
	"log"
	"time"
)

// ResolveLocation maps a configured IANA zone name to a *time.Location.
// Empty or invalid names fall back to the host's local zone.
func ResolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Error loading timezone '%s': %v. Falling back to local zone.", name, err)
		return time.Local
	}
	return loc
}
