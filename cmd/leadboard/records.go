package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/backend"
	"github.com/foxzi/leadboard/internal/models"
	"github.com/foxzi/leadboard/internal/records"
)

var exportCmd = &cobra.Command{
	Use:   "export [leads|emails]",
	Short: "Download the backend's CSV export of a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [leads|emails] [file.csv]",
	Short: "Upload a CSV file to a table's bulk import",
	Args:  cobra.ExactArgs(2),
	RunE:  runImport,
}

var (
	exportOutput  string
	exportFilters map[string]string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: the table's export file name, - for stdout)")
	exportCmd.Flags().StringToStringVar(&exportFilters, "filter", nil, "Filters such as status=NEW,dateFrom=2024-01-01")
}

type bulkTable interface {
	ExportCSV(ctx context.Context, params url.Values) (*apiclient.Blob, error)
	ImportCSV(ctx context.Context, filename string, r io.Reader) (models.Record, error)
}

func bulkResource(name string, client *apiclient.Client) (*records.Resource, bulkTable, error) {
	res, ok := records.Lookup(name)
	if !ok {
		return nil, nil, fmt.Errorf("unknown table %q", name)
	}
	switch res {
	case records.Leads:
		return res, backend.Leads[models.Record](client), nil
	case records.Emails:
		return res, backend.Emails[models.Record](client), nil
	default:
		return nil, nil, fmt.Errorf("%s", res.ImportUnavailable())
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := backendClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	res, table, err := bulkResource(args[0], client)
	if err != nil {
		return err
	}

	q := url.Values{}
	for k, v := range exportFilters {
		q.Set(k, v)
	}
	st := records.ParseListState(res, q)

	blob, err := table.ExportCSV(cmd.Context(), st.Query(cfg.Location()))
	if err != nil {
		return fmt.Errorf("export failed: %s", apiclient.Message(err, err.Error()))
	}

	if exportOutput == "-" {
		_, err := os.Stdout.Write(blob.Data)
		return err
	}
	out := exportOutput
	if out == "" {
		out = res.ExportFile
	}
	if err := os.WriteFile(out, blob.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "Exported %s to %s (%d bytes)\n", res.Title, out, len(blob.Data))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := backendClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	res, table, err := bulkResource(args[0], client)
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := table.ImportCSV(cmd.Context(), filepath.Base(args[1]), f)
	if err != nil {
		return fmt.Errorf("import failed: %s", apiclient.Message(err, err.Error()))
	}

	if count := result.First("imported", "created", "count", "inserted"); count != "" {
		fmt.Printf("Imported %s %s\n", count, res.Title)
	} else {
		fmt.Println("Import completed")
	}
	return nil
}
