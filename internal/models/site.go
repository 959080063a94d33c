package models

import "github.com/go-openapi/strfmt"

// SiteDetails describes the metering point attached to an Amber account.
type SiteDetails struct {
	ID         string        `json:"id"`
	NMI        string        `json:"nmi"`
	Network    string        `json:"network"`
	Status     string        `json:"status"`
	ActiveFrom strfmt.Date   `json:"activeFrom"`
	Channels   []SiteChannel `json:"channels"`
}

type SiteChannel struct {
	Identifier string `json:"identifier"`
	Tariff     string `json:"tariff"`
	TariffType string `json:"type"`
}

// RequiredFields lists the keys every element of a sites response must carry.
func (SiteDetails) RequiredFields() []string {
	return []string{"id", "nmi", "network", "status", "activeFrom", "channels"}
}

// NestedFields lists the keys required inside each element of "channels".
func (SiteDetails) NestedFields() map[string][]string {
	return map[string][]string{"channels": SiteChannel{}.RequiredFields()}
}

func (SiteChannel) RequiredFields() []string {
	return []string{"identifier", "tariff", "type"}
}
