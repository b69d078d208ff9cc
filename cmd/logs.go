package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pilgrimcast/config"
	"github.com/kilianp07/pilgrimcast/core/audit"
	"github.com/kilianp07/pilgrimcast/core/model"
	"github.com/kilianp07/pilgrimcast/pkg/export"
)

var logsOpts struct {
	format     string
	since      time.Duration
	status     string
	crowdLevel string
	rule       string
	limit      int
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Export recorded predictions from the audit store",
	RunE:  runLogs,
}

func init() {
	f := logsCmd.Flags()
	f.StringVar(&logsOpts.format, "format", "csv", "output format: csv, json or html")
	f.DurationVar(&logsOpts.since, "since", 0, "only records newer than this duration")
	f.StringVar(&logsOpts.status, "status", "", "filter by status (success or error)")
	f.StringVar(&logsOpts.crowdLevel, "crowd-level", "", "filter by crowd level")
	f.StringVar(&logsOpts.rule, "rule", "", "filter by applied rule name")
	f.IntVar(&logsOpts.limit, "limit", 0, "maximum number of records")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := audit.NewStore(cmd.Context(), cfg.Audit)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	if store == nil {
		return fmt.Errorf("audit backend %q keeps no records", cfg.Audit.Backend)
	}
	defer func() { _ = store.Close() }()

	q := audit.Query{Status: logsOpts.status, Rule: logsOpts.rule, Limit: logsOpts.limit}
	if logsOpts.since > 0 {
		q.Start = time.Now().Add(-logsOpts.since)
	}
	if logsOpts.crowdLevel != "" {
		lvl, ok := model.ParseCrowdLevel(logsOpts.crowdLevel)
		if !ok {
			return fmt.Errorf("unknown crowd level %q", logsOpts.crowdLevel)
		}
		q.CrowdLevel = lvl.String()
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch logsOpts.format {
	case "csv":
		return export.WriteCSV(out, recs)
	case "json":
		return export.WriteJSON(out, recs)
	case "html":
		return export.WriteChart(out, recs)
	default:
		return fmt.Errorf("unsupported format %q", logsOpts.format)
	}
}
