package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-recon/internal/export"
	"github.com/sells-group/catalog-recon/internal/model"
	"github.com/sells-group/catalog-recon/internal/recon"
	"github.com/sells-group/catalog-recon/internal/source"
	"github.com/sells-group/catalog-recon/internal/store"
)

var (
	reconcileOut     string
	reconcileNoStore bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Fetch all three catalogs and run a reconciliation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		report := runReconciliation(ctx)

		if !reconcileNoStore {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.SaveReport(ctx, report)
			if err != nil {
				return err
			}
			zap.L().Info("report persisted", zap.String("report_id", id))
		}

		if reconcileOut != "" {
			if err := writeReport(report, reconcileOut); err != nil {
				return err
			}
		}

		printSummary(cmd, report)
		return nil
	},
}

// runReconciliation fetches the three catalogs in parallel and runs the
// engine over whatever arrived. Fetch failures surface as report warnings,
// never as errors.
func runReconciliation(ctx context.Context) *model.Report {
	providers := []source.Provider{
		source.NewCRMCatalog(cfg.CRM),
		source.NewFieldServiceCatalog(cfg.FieldService),
		source.NewInventoryCatalog(cfg.Inventory),
	}

	inputs := source.FetchAll(ctx, providers)
	return recon.NewEngine(cfg.Recon).Reconcile(inputs)
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// writeReport writes the report to a file, picking the format from the
// extension: .xlsx gets the workbook, anything else gets indented JSON.
func writeReport(report *model.Report, path string) error {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return export.WriteXLSX(report, path)
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal report")
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return eris.Wrap(err, "write report")
	}
	return nil
}

func printSummary(cmd *cobra.Command, report *model.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rows:           %d\n", report.Summary.TotalRows)
	fmt.Fprintf(out, "Mismatched:     %d\n", report.Summary.MismatchRows)
	fmt.Fprintf(out, "Fully matched:  %d\n", report.Summary.FullyMatchedRows)
	for _, src := range model.Sources {
		fmt.Fprintf(out, "%-15s %d records, missing in %d rows\n",
			src.Label()+":", report.Summary.SourceCounts[src], report.Summary.MissingBySource[src])
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileOut, "out", "", "write the full report to a file (.json or .xlsx)")
	reconcileCmd.Flags().BoolVar(&reconcileNoStore, "no-store", false, "skip persisting the report")
	rootCmd.AddCommand(reconcileCmd)
}
