package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-recon/internal/model"
)

func TestWriteReport_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, writeReport(stubReport(), path))

	payload, err := os.ReadFile(path)
	require.NoError(t, err)

	var report model.Report
	require.NoError(t, json.Unmarshal(payload, &report))
	assert.Equal(t, 1, report.Summary.TotalRows)
}

func TestWriteReport_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.XLSX")
	require.NoError(t, writeReport(stubReport(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPrintSummary(t *testing.T) {
	report := stubReport()
	report.Summary.SourceCounts = map[model.Source]int{model.SourceCRM: 5}
	report.Summary.MissingBySource = map[model.Source]int{model.SourceInventory: 1}
	report.Warnings = []string{"Inventory: dropped 1 records with no id, name, or SKU"}

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	printSummary(cmd, report)

	out := buf.String()
	assert.Contains(t, out, "Rows:           1")
	assert.Contains(t, out, "Mismatched:     1")
	assert.Contains(t, out, "CRM:            5 records")
	assert.Contains(t, out, "warning: Inventory: dropped 1 records")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["reconcile"])
	assert.True(t, names["serve"])
	assert.True(t, names["runs"])
}
