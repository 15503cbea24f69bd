// Package contact normalizes person contact fields before they hit the store.
package contact

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers submitted without a country prefix.
const DefaultRegion = "DE"

// NormalizeMobile parses raw into E.164 form. An empty input stays empty; an
// unparseable or impossible number is an error so bad contact data never lands
// in the store.
func NormalizeMobile(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("parse mobile number %q: %w", raw, err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid mobile number %q", raw)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
