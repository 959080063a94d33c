package api

import (
	"context"

	"github.com/aure/amberctl/internal/models"
)

var spikeMessages = map[string]string{
	models.SpikeNone:      "Interval has no spike",
	models.SpikePotential: "Interval has potential to spike.",
	models.SpikeSpike:     "Interval spiking",
}

// UnknownSpikeStatus is reported for spike values this client does not know.
const UnknownSpikeStatus = "Unknown spike status"

// SiteData returns every site on the account.
func (c *Client) SiteData(ctx context.Context) ([]models.SiteDetails, error) {
	return c.getSites(ctx, SitesURL(c.baseURL))
}

// UserSiteID returns the id of the account's site. Callers should keep the
// value for the rest of the run instead of asking again.
func (c *Client) UserSiteID(ctx context.Context) (string, error) {
	sites, err := c.SiteData(ctx)
	if err != nil {
		return "", err
	}
	if len(sites) == 0 {
		return "", ErrEmptySiteList
	}
	return sites[0].ID, nil
}

func (c *Client) Prices(ctx context.Context, siteID string, w Window) ([]models.PriceInterval, error) {
	return c.getPrices(ctx, PricesURL(c.baseURL, siteID, w))
}

// UsageByDate validates both dates and only then fetches usage between them.
func (c *Client) UsageByDate(ctx context.Context, siteID, start, end string) ([]models.UsageRecord, error) {
	r, err := NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return c.getUsage(ctx, UsageURL(c.baseURL, siteID, r))
}

func (c *Client) Renewables(ctx context.Context, state string, w Window) ([]models.RenewablesRecord, error) {
	return c.getRenewables(ctx, RenewablesURL(c.baseURL, state, w))
}

// SpikeStatus describes the spike state of the current interval in words.
func (c *Client) SpikeStatus(ctx context.Context, siteID string) (string, error) {
	prices, err := c.Prices(ctx, siteID, Current)
	if err != nil {
		return "", err
	}
	if len(prices) == 0 {
		return "", ErrNoIntervals
	}
	return SpikeMessage(prices[0].SpikeStatus), nil
}

// SpikeMessage maps a raw spikeStatus value to a sentence.
func SpikeMessage(status string) string {
	if msg, ok := spikeMessages[status]; ok {
		return msg
	}
	return UnknownSpikeStatus
}
