package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the local archive written by `collect`. Live queries never read it.
type DB struct {
	*sql.DB
	path string
}

func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	wrapper := &DB{DB: db, path: dbPath}
	if err := wrapper.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	if err := os.Chmod(dbPath, 0600); err != nil {
		db.Close()
		return nil, err
	}

	return wrapper, nil
}

func (db *DB) Migrate() error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
CREATE TABLE IF NOT EXISTS collect_runs (
    run_id TEXT PRIMARY KEY,
    collected_at TEXT NOT NULL,
    site_id TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS price_intervals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES collect_runs(run_id),
    site_id TEXT NOT NULL,
    interval_type TEXT NOT NULL,
    channel_type TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    per_kwh TEXT NOT NULL,
    spot_per_kwh TEXT NOT NULL,
    renewables TEXT NOT NULL,
    spike_status TEXT NOT NULL,
    descriptor TEXT NOT NULL,
    tariff_period TEXT NOT NULL,
    estimate INTEGER
);

DROP INDEX IF EXISTS idx_price_interval;
DELETE FROM price_intervals WHERE id NOT IN (
    SELECT MAX(id) FROM price_intervals GROUP BY site_id, channel_type, start_time
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_price_slot
    ON price_intervals(site_id, channel_type, start_time);
CREATE INDEX IF NOT EXISTS idx_price_start ON price_intervals(start_time);

CREATE TABLE IF NOT EXISTS renewables_intervals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES collect_runs(run_id),
    state TEXT NOT NULL,
    interval_type TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    renewables TEXT NOT NULL,
    descriptor TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_renewables_start ON renewables_intervals(start_time);
DELETE FROM renewables_intervals WHERE id NOT IN (
    SELECT MAX(id) FROM renewables_intervals GROUP BY state, start_time
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_renewables_slot
    ON renewables_intervals(state, start_time);

-- Days are NEM days (UTC+10, no daylight saving), the market's own calendar.
DROP VIEW IF EXISTS daily_prices;
CREATE VIEW daily_prices AS
SELECT
    DATE(start_time, '+10 hours') as day,
    channel_type,
    AVG(CAST(per_kwh AS REAL)) as avg_per_kwh,
    MIN(CAST(per_kwh AS REAL)) as min_per_kwh,
    MAX(CAST(per_kwh AS REAL)) as max_per_kwh,
    SUM(CASE WHEN spike_status = 'spike' THEN 1 ELSE 0 END) as spikes,
    COUNT(*) as intervals
FROM price_intervals
GROUP BY DATE(start_time, '+10 hours'), channel_type
ORDER BY day DESC, channel_type;
	`)
	if err != nil {
		return err
	}

	return tx.Commit()
}
