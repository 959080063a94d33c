package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aure/amberctl/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "nested", "amber.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func interval(start time.Time, perKwh, spike string, estimate *bool) models.PriceInterval {
	return models.PriceInterval{
		IntervalType:      "CurrentInterval",
		Date:              strfmt.Date(start),
		StartTime:         strfmt.DateTime(start),
		EndTime:           strfmt.DateTime(start.Add(30 * time.Minute)),
		NEMTime:           strfmt.DateTime(start.Add(30 * time.Minute)),
		Duration:          30,
		PerKwh:            decimal.RequireFromString(perKwh),
		Renewables:        decimal.NewFromInt(40),
		SpotPerKwh:        decimal.RequireFromString("5.5"),
		ChannelType:       "general",
		SpikeStatus:       spike,
		TariffInformation: models.TariffInformation{Period: "peak"},
		Descriptor:        "neutral",
		Estimate:          estimate,
	}
}

var nem = time.FixedZone("NEM", 10*60*60)

// nemDay returns 10:00 NEM time, daysAgo days before today, in UTC.
func nemDay(daysAgo int) time.Time {
	now := time.Now().In(nem)
	return time.Date(now.Year(), now.Month(), now.Day()-daysAgo, 10, 0, 0, 0, nem).UTC()
}

func nemDate(t time.Time) string {
	return t.In(nem).Format("2006-01-02")
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := openTestDB(t)
	require.NoError(t, database.Migrate())
	require.NoError(t, database.Migrate())
}

func TestSaveCollectionAndHistory(t *testing.T) {
	database := openTestDB(t)

	latest, err := database.GetLatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)

	no := false
	day := nemDay(0)
	c := Collection{
		RunID:       "run-1",
		CollectedAt: day.Add(time.Hour),
		SiteID:      "S1",
		State:       "nsw",
		Prices: []models.PriceInterval{
			interval(day, "20.5", models.SpikeNone, &no),
			interval(day.Add(30*time.Minute), "30.5", models.SpikeSpike, nil),
		},
		Renewables: []models.RenewablesRecord{{
			IntervalType: "CurrentRenewable",
			StartTime:    strfmt.DateTime(day),
			EndTime:      strfmt.DateTime(day.Add(30 * time.Minute)),
			Renewables:   decimal.RequireFromString("45.3"),
			Descriptor:   "best",
		}},
	}
	require.NoError(t, database.SaveCollection(c))

	latest, err = database.GetLatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-1", latest.RunID)
	assert.Equal(t, "S1", latest.SiteID)
	assert.True(t, latest.CollectedAt.Equal(day.Add(time.Hour)))

	history, err := database.GetPriceHistory(day.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "20.5", history[0].PerKwh)
	assert.True(t, history[0].StartTime.Equal(day))
	require.NotNil(t, history[0].Estimate)
	assert.False(t, *history[0].Estimate)
	assert.Nil(t, history[1].Estimate)
	assert.Equal(t, "peak", history[1].TariffPeriod)

	later, err := database.GetPriceHistory(day.Add(15 * time.Minute))
	require.NoError(t, err)
	assert.Len(t, later, 1)

	daily, err := database.GetDailyPrices(7)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, nemDate(day), daily[0].Day)
	assert.Equal(t, "general", daily[0].ChannelType)
	assert.InDelta(t, 25.5, daily[0].AvgPerKwh, 1e-9)
	assert.InDelta(t, 20.5, daily[0].MinPerKwh, 1e-9)
	assert.InDelta(t, 30.5, daily[0].MaxPerKwh, 1e-9)
	assert.Equal(t, 1, daily[0].Spikes)
	assert.Equal(t, 2, daily[0].Intervals)
}

func TestSaveCollection_DuplicateRunRollsBack(t *testing.T) {
	database := openTestDB(t)
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	c := Collection{RunID: "dup", CollectedAt: day, SiteID: "S1",
		Prices: []models.PriceInterval{interval(day, "10", models.SpikeNone, nil)}}

	require.NoError(t, database.SaveCollection(c))
	require.Error(t, database.SaveCollection(c))

	history, err := database.GetPriceHistory(day.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestGetDailyPrices_LimitsDaysNotRows(t *testing.T) {
	database := openTestDB(t)

	var prices []models.PriceInterval
	for d := 0; d < 4; d++ {
		general := interval(nemDay(d), "20", models.SpikeNone, nil)
		feedIn := interval(nemDay(d), "-5", models.SpikeNone, nil)
		feedIn.ChannelType = "feedIn"
		prices = append(prices, general, feedIn)
	}
	require.NoError(t, database.SaveCollection(Collection{
		RunID: "run-1", CollectedAt: time.Now(), SiteID: "S1", Prices: prices,
	}))

	daily, err := database.GetDailyPrices(2)
	require.NoError(t, err)
	require.Len(t, daily, 4)

	days := map[string][]string{}
	for _, d := range daily {
		days[d.Day] = append(days[d.Day], d.ChannelType)
	}
	assert.Equal(t, map[string][]string{
		nemDate(nemDay(0)): {"feedIn", "general"},
		nemDate(nemDay(1)): {"feedIn", "general"},
	}, days)

	none, err := database.GetDailyPrices(0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetDailyPrices_GroupsByNEMDay(t *testing.T) {
	database := openTestDB(t)

	// 05:00 NEM is 19:00 UTC on the previous calendar day.
	early := nemDay(0).Add(-5 * time.Hour)
	require.NotEqual(t, nemDate(early), early.Format("2006-01-02"))

	require.NoError(t, database.SaveCollection(Collection{
		RunID: "run-1", CollectedAt: time.Now(), SiteID: "S1",
		Prices: []models.PriceInterval{
			interval(early, "10", models.SpikeNone, nil),
			interval(nemDay(0), "30", models.SpikeNone, nil),
		},
	}))

	daily, err := database.GetDailyPrices(1)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, nemDate(early), daily[0].Day)
	assert.Equal(t, 2, daily[0].Intervals)
}

func TestSaveCollection_SameIntervalTwiceStoredOnce(t *testing.T) {
	database := openTestDB(t)
	start := nemDay(0)

	require.NoError(t, database.SaveCollection(Collection{
		RunID: "run-1", CollectedAt: start, SiteID: "S1", State: "nsw",
		Prices: []models.PriceInterval{interval(start, "20", models.SpikeNone, nil)},
		Renewables: []models.RenewablesRecord{{
			IntervalType: "CurrentRenewable",
			StartTime:    strfmt.DateTime(start),
			EndTime:      strfmt.DateTime(start.Add(30 * time.Minute)),
			Renewables:   decimal.RequireFromString("40"),
			Descriptor:   "good",
		}},
	}))
	require.NoError(t, database.SaveCollection(Collection{
		RunID: "run-2", CollectedAt: start.Add(10 * time.Minute), SiteID: "S1", State: "nsw",
		Prices: []models.PriceInterval{interval(start, "24", models.SpikeSpike, nil)},
		Renewables: []models.RenewablesRecord{{
			IntervalType: "CurrentRenewable",
			StartTime:    strfmt.DateTime(start),
			EndTime:      strfmt.DateTime(start.Add(30 * time.Minute)),
			Renewables:   decimal.RequireFromString("42"),
			Descriptor:   "good",
		}},
	}))

	history, err := database.GetPriceHistory(start.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "run-2", history[0].RunID)
	assert.Equal(t, "24", history[0].PerKwh)

	daily, err := database.GetDailyPrices(1)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 1, daily[0].Intervals)
	assert.Equal(t, 1, daily[0].Spikes)

	var renewables int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM renewables_intervals`).Scan(&renewables))
	assert.Equal(t, 1, renewables)
}
