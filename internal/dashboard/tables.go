package dashboard

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/Alias1177/StockDashboard/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// WriteAnomalies renders the detected anomalies table
func WriteAnomalies(w io.Writer, anomalies []models.Anomaly, loading bool) error {
	if loading {
		_, err := fmt.Fprintln(w, "Loading anomalies...")
		return err
	}
	if len(anomalies) == 0 {
		_, err := fmt.Fprintln(w, "No anomalies detected in this period.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tType\tScore\tDescription\tStatus")
	for _, a := range anomalies {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n",
			displayDate(a.When()), a.Kind(), a.Score, a.Description, a.Status)
	}
	return tw.Flush()
}

// WriteRecords renders the historical records table
func WriteRecords(w io.Writer, records []models.RawRecord, loading bool) error {
	if loading {
		_, err := fmt.Fprintln(w, "Loading historical records...")
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No historical records available.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tOpen\tHigh\tLow\tClose\tVolume")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			displayDate(r.Date), r.Open.Float(), r.High.Float(), r.Low.Float(), r.Close.Float(),
			formatVolume(r.Volume.Float()))
	}
	return tw.Flush()
}

// displayDate shows the calendar date, or the raw string when it does not parse
func displayDate(s string) string {
	ts, ok := models.ParseTimestamp(s)
	if !ok {
		return s
	}
	return time.Unix(ts, 0).UTC().Format("1/2/2006")
}

func formatVolume(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "NaN"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return printer.Sprintf("%d", int64(v))
	default:
		return printer.Sprintf("%.2f", v)
	}
}
