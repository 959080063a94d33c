package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aure/amberctl/internal/models"
)

// timeLayout sorts lexically and is understood by SQLite's DATE().
const timeLayout = "2006-01-02 15:04:05"

// Collection is everything one `collect` run fetched.
type Collection struct {
	RunID       string
	CollectedAt time.Time
	SiteID      string
	State       string
	Prices      []models.PriceInterval
	Renewables  []models.RenewablesRecord
}

type Run struct {
	RunID       string
	CollectedAt time.Time
	SiteID      string
	State       string
}

type ArchivedPrice struct {
	RunID        string
	SiteID       string
	IntervalType string
	ChannelType  string
	StartTime    time.Time
	EndTime      time.Time
	PerKwh       string
	SpotPerKwh   string
	Renewables   string
	SpikeStatus  string
	Descriptor   string
	TariffPeriod string
	Estimate     *bool
}

type DailyPrice struct {
	Day         string
	ChannelType string
	AvgPerKwh   float64
	MinPerKwh   float64
	MaxPerKwh   float64
	Spikes      int
	Intervals   int
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

// SaveCollection stores a run and its intervals in one transaction. An
// interval already archived by an earlier run is overwritten with the newer
// values, so each (site, channel, start) slot is stored once.
func (db *DB) SaveCollection(c Collection) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO collect_runs (run_id, collected_at, site_id, state) VALUES (?, ?, ?, ?)`,
		c.RunID, formatTime(c.CollectedAt), c.SiteID, c.State,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, p := range c.Prices {
		var estimate sql.NullBool
		if p.Estimate != nil {
			estimate = sql.NullBool{Bool: *p.Estimate, Valid: true}
		}
		_, err := tx.Exec(
			`INSERT INTO price_intervals (run_id, site_id, interval_type, channel_type, start_time, end_time,
				per_kwh, spot_per_kwh, renewables, spike_status, descriptor, tariff_period, estimate)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(site_id, channel_type, start_time) DO UPDATE SET
				run_id = excluded.run_id,
				interval_type = excluded.interval_type,
				end_time = excluded.end_time,
				per_kwh = excluded.per_kwh,
				spot_per_kwh = excluded.spot_per_kwh,
				renewables = excluded.renewables,
				spike_status = excluded.spike_status,
				descriptor = excluded.descriptor,
				tariff_period = excluded.tariff_period,
				estimate = excluded.estimate`,
			c.RunID, c.SiteID, p.IntervalType, p.ChannelType,
			formatTime(time.Time(p.StartTime)), formatTime(time.Time(p.EndTime)),
			p.PerKwh.String(), p.SpotPerKwh.String(), p.Renewables.String(),
			p.SpikeStatus, p.Descriptor, p.TariffInformation.Period, estimate,
		)
		if err != nil {
			return fmt.Errorf("inserting price interval: %w", err)
		}
	}

	for _, r := range c.Renewables {
		_, err := tx.Exec(
			`INSERT INTO renewables_intervals (run_id, state, interval_type, start_time, end_time, renewables, descriptor)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(state, start_time) DO UPDATE SET
				run_id = excluded.run_id,
				interval_type = excluded.interval_type,
				end_time = excluded.end_time,
				renewables = excluded.renewables,
				descriptor = excluded.descriptor`,
			c.RunID, c.State, r.IntervalType,
			formatTime(time.Time(r.StartTime)), formatTime(time.Time(r.EndTime)),
			r.Renewables.String(), r.Descriptor,
		)
		if err != nil {
			return fmt.Errorf("inserting renewables interval: %w", err)
		}
	}

	return tx.Commit()
}

func (db *DB) GetLatestRun() (*Run, error) {
	row := db.QueryRow(`SELECT run_id, collected_at, site_id, state FROM collect_runs ORDER BY collected_at DESC LIMIT 1`)

	var r Run
	var collectedAt string
	err := row.Scan(&r.RunID, &collectedAt, &r.SiteID, &r.State)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if r.CollectedAt, err = parseTime(collectedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) GetPriceHistory(since time.Time) ([]ArchivedPrice, error) {
	rows, err := db.Query(`SELECT run_id, site_id, interval_type, channel_type, start_time, end_time,
		per_kwh, spot_per_kwh, renewables, spike_status, descriptor, tariff_period, estimate
		FROM price_intervals WHERE start_time >= ? ORDER BY start_time ASC, id ASC`, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []ArchivedPrice
	for rows.Next() {
		var p ArchivedPrice
		var start, end string
		var estimate sql.NullBool
		if err := rows.Scan(&p.RunID, &p.SiteID, &p.IntervalType, &p.ChannelType, &start, &end,
			&p.PerKwh, &p.SpotPerKwh, &p.Renewables, &p.SpikeStatus, &p.Descriptor, &p.TariffPeriod, &estimate); err != nil {
			return nil, err
		}
		if p.StartTime, err = parseTime(start); err != nil {
			return nil, err
		}
		if p.EndTime, err = parseTime(end); err != nil {
			return nil, err
		}
		if estimate.Valid {
			p.Estimate = &estimate.Bool
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// GetDailyPrices returns the daily aggregates for the last days NEM days,
// today included, one row per day and channel.
func (db *DB) GetDailyPrices(days int) ([]DailyPrice, error) {
	if days <= 0 {
		return nil, nil
	}
	rows, err := db.Query(`SELECT day, channel_type, avg_per_kwh, min_per_kwh, max_per_kwh, spikes, intervals
		FROM daily_prices WHERE day >= DATE('now', '+10 hours', ?)
		ORDER BY day DESC, channel_type`, fmt.Sprintf("-%d days", days-1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailyPrice
	for rows.Next() {
		var d DailyPrice
		if err := rows.Scan(&d.Day, &d.ChannelType, &d.AvgPerKwh, &d.MinPerKwh, &d.MaxPerKwh, &d.Spikes, &d.Intervals); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}
