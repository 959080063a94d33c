package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/aure/amberctl/internal/models"
)

var usageHeader = []string{
	"Type",
	"duration",
	"date",
	"end_date",
	"quality",
	"kwh",
	"nem_time",
	"per_kwh",
	"channel_type",
	"channel_identifier",
	"cost",
	"renewables",
	"spot_per_kwh",
	"start_time",
	"spike_status",
	"tariff_information",
	"descriptor",
}

// WriteUsageCSVFile creates path and writes records to it.
func WriteUsageCSVFile(path string, records []models.UsageRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteUsageCSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func WriteUsageCSV(out io.Writer, records []models.UsageRecord) error {
	w := csv.NewWriter(out)

	if err := w.Write(usageHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.IntervalType,
			strconv.Itoa(r.Duration),
			r.Date.String(),
			fmtTime(r.EndTime),
			r.Quality,
			r.Kwh.String(),
			fmtTime(r.NEMTime),
			r.PerKwh.String(),
			r.ChannelType,
			r.ChannelIdentifier,
			r.Cost.String(),
			r.Renewables.String(),
			r.SpotPerKwh.String(),
			fmtTime(r.StartTime),
			r.SpikeStatus,
			r.TariffInformation.Period,
			r.Descriptor,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t strfmt.DateTime) string {
	if time.Time(t).IsZero() {
		return ""
	}
	return time.Time(t).Format(time.RFC3339)
}
