package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/pilgrimcast/core/audit"
)

var csvHeader = []string{
	"id", "timestamp", "status", "raw_prediction", "predicted_visitors",
	"lower", "upper", "crowd_level", "rules_applied", "error_kind", "latency_ms",
}

// WriteJSON writes the records to w as a JSON array.
func WriteJSON(w io.Writer, recs []audit.Record) error {
	if recs == nil {
		recs = []audit.Record{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

// WriteCSV writes one row per record. Rules are joined with "|"; result
// columns are empty for failed requests.
func WriteCSV(w io.Writer, recs []audit.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.ID,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Status,
			strconv.FormatFloat(r.RawValue, 'f', -1, 64),
			"", "", "", "", "",
			r.ErrorKind,
			strconv.FormatFloat(r.LatencyMS, 'f', 3, 64),
		}
		if res := r.Result; res != nil {
			row[4] = strconv.Itoa(res.PredictedVisitors)
			row[5] = strconv.Itoa(res.ConfidenceInterval.Lower)
			row[6] = strconv.Itoa(res.ConfidenceInterval.Upper)
			row[7] = res.CrowdLevel.String()
			row[8] = strings.Join(res.RulesApplied, "|")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
