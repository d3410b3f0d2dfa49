package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foxzi/leadboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Listen address: %s (TLS: %v)\n", cfg.Server.ListenAddr, cfg.Server.TLS.Enabled)
	fmt.Printf("  Timezone:       %s\n", cfg.Server.Timezone)
	fmt.Printf("  Backend:        %s (API key %s)\n", cfg.Backend.BaseURL, config.Redact(cfg.Backend.APIKey))
	if cfg.LeadSwiftConfigured() {
		fmt.Printf("  LeadSwift:      %s (API key %s)\n", cfg.LeadSwift.BaseURL, config.Redact(cfg.LeadSwift.APIKey))
	} else {
		fmt.Println("  LeadSwift:      not configured")
	}
	fmt.Printf("  Sessions:       %s (TTL %s)\n", cfg.Storage.SessionPath, cfg.Auth.SessionTTL)
	fmt.Printf("  Audit log:      %s\n", cfg.Storage.AuditPath)
	fmt.Printf("  Metrics:        %v\n", cfg.Metrics.Enabled)
	if len(cfg.Server.AllowedIPs) > 0 {
		fmt.Printf("  Allowed IPs:    %s\n", strings.Join(cfg.Server.AllowedIPs, ", "))
	}

	return nil
}
