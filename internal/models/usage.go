package models

import "github.com/shopspring/decimal"

// UsageRecord is one historical 30 minute usage interval. It carries every
// price field plus the metered energy and what it cost.
type UsageRecord struct {
	PriceInterval
	Kwh               decimal.Decimal `json:"kwh"`
	Cost              decimal.Decimal `json:"cost"`
	ChannelIdentifier string          `json:"channelIdentifier"`
	Quality           string          `json:"quality"`
}

func (r UsageRecord) RequiredFields() []string {
	return append(r.PriceInterval.RequiredFields(), "kwh", "cost", "channelIdentifier", "quality")
}
