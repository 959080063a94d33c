package api

import (
	"fmt"
	"strings"
)

// Window selects which 30 minute interval a price or renewables query
// targets, relative to now.
type Window int

const (
	Current Window = iota
	Previous
	Next
)

var windowNames = map[Window]string{
	Current:  "current",
	Previous: "previous",
	Next:     "next",
}

// windowClauses are appended to the resource path. The trailing parameter
// is always joined with '&', which is why Current keeps a bare '?'.
var windowClauses = map[Window]string{
	Current:  "current?",
	Previous: "current?previous=1",
	Next:     "current?next=1",
}

func (w Window) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("Window(%d)", int(w))
}

// ParseWindow maps "current", "previous" and "next" to a Window.
func ParseWindow(s string) (Window, error) {
	for w, name := range windowNames {
		if strings.EqualFold(s, name) {
			return w, nil
		}
	}
	return Current, fmt.Errorf("unknown window %q (valid: current, previous, next)", s)
}

const resolution = "resolution=30"

// SitesURL builds {base}/sites.
func SitesURL(baseURL string) string {
	return fmt.Sprintf("%s/sites", trimBase(baseURL))
}

// PricesURL builds {base}/sites/{site}/prices/{clause}&resolution=30.
func PricesURL(baseURL, siteID string, w Window) string {
	return fmt.Sprintf("%s/sites/%s/prices/%s&%s", trimBase(baseURL), siteID, clause(w), resolution)
}

// UsageURL builds the historical usage URL for an already validated range.
func UsageURL(baseURL, siteID string, r DateRange) string {
	return fmt.Sprintf("%s/sites/%s/usage?startDate=%s&endDate=%s&%s", trimBase(baseURL), siteID, r.Start, r.End, resolution)
}

// RenewablesURL builds {base}/state/{state}/renewables/{clause}&resolution=30.
func RenewablesURL(baseURL, state string, w Window) string {
	return fmt.Sprintf("%s/state/%s/renewables/%s&%s", trimBase(baseURL), state, clause(w), resolution)
}

func clause(w Window) string {
	if c, ok := windowClauses[w]; ok {
		return c
	}
	return windowClauses[Current]
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
