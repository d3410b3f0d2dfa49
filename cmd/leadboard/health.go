package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/backend"
	"github.com/foxzi/leadboard/internal/leadswift"
	"github.com/foxzi/leadboard/internal/models"
)

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend and LeadSwift are reachable",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 15*time.Second, "Overall timeout")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
	defer cancel()

	client, err := backendClient(ctx, cfg)
	if err != nil {
		return err
	}

	failed := false

	fmt.Printf("Backend %s\n", cfg.Backend.BaseURL)
	doc, err := backend.NewHealthService(client).Check(ctx)
	if err != nil {
		fmt.Printf("  health:  FAIL (%s)\n", apiclient.Message(err, err.Error()))
		failed = true
	} else {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("  health:  OK")
		for _, k := range keys {
			fmt.Printf("    %s: %v\n", k, doc[k])
		}
	}

	if loginEmail != "" {
		leads, err := backend.Leads[models.Record](client).List(ctx, nil)
		if err != nil {
			fmt.Printf("  leads:   FAIL (%s)\n", apiclient.Message(err, err.Error()))
			failed = true
		} else {
			fmt.Printf("  leads:   OK (%d records)\n", len(leads))
		}
	}

	ls := leadswift.New(cfg.LeadSwift.BaseURL, cfg.LeadSwift.APIKey)
	if !ls.Configured() {
		fmt.Println("LeadSwift: not configured")
	} else {
		fmt.Printf("LeadSwift %s: configured\n", cfg.LeadSwift.BaseURL)
	}

	if failed {
		return fmt.Errorf("health check failed")
	}
	return nil
}
