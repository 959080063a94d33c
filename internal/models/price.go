package models

import (
	"github.com/go-openapi/strfmt"
	"github.com/shopspring/decimal"
)

// Spike statuses reported on price intervals.
const (
	SpikeNone      = "none"
	SpikePotential = "potential"
	SpikeSpike     = "spike"
)

type TariffInformation struct {
	Period string `json:"period"`
}

func (TariffInformation) RequiredFields() []string {
	return []string{"period"}
}

// PriceInterval is one 30 minute pricing interval for a site channel.
// Estimate is nil when the upstream omits it, which forecast intervals do.
type PriceInterval struct {
	IntervalType      string            `json:"type"`
	Date              strfmt.Date       `json:"date"`
	StartTime         strfmt.DateTime   `json:"startTime"`
	EndTime           strfmt.DateTime   `json:"endTime"`
	NEMTime           strfmt.DateTime   `json:"nemTime"`
	Duration          int               `json:"duration"`
	PerKwh            decimal.Decimal   `json:"perKwh"`
	Renewables        decimal.Decimal   `json:"renewables"`
	SpotPerKwh        decimal.Decimal   `json:"spotPerKwh"`
	ChannelType       string            `json:"channelType"`
	SpikeStatus       string            `json:"spikeStatus"`
	TariffInformation TariffInformation `json:"tariffInformation"`
	Descriptor        string            `json:"descriptor"`
	Estimate          *bool             `json:"estimate,omitempty"`
}

func (PriceInterval) RequiredFields() []string {
	return []string{
		"type", "date", "startTime", "endTime", "nemTime", "duration",
		"perKwh", "renewables", "spotPerKwh", "channelType", "spikeStatus",
		"tariffInformation", "descriptor",
	}
}

func (PriceInterval) NestedFields() map[string][]string {
	return map[string][]string{"tariffInformation": TariffInformation{}.RequiredFields()}
}

// RenewablesRecord is the renewable share of a grid state for one interval.
type RenewablesRecord struct {
	IntervalType string          `json:"type"`
	Date         strfmt.Date     `json:"date"`
	StartTime    strfmt.DateTime `json:"startTime"`
	EndTime      strfmt.DateTime `json:"endTime"`
	NEMTime      strfmt.DateTime `json:"nemTime"`
	Duration     int             `json:"duration"`
	Renewables   decimal.Decimal `json:"renewables"`
	Descriptor   string          `json:"descriptor"`
}

func (RenewablesRecord) RequiredFields() []string {
	return []string{"type", "date", "startTime", "endTime", "nemTime", "duration", "renewables", "descriptor"}
}
