package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxzi/leadboard/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log commands",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent audit log entries",
	RunE:  runAuditList,
}

var auditCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old audit log entries",
	RunE:  runAuditCleanup,
}

var (
	auditFilter audit.Filter
	auditDays   int
	auditDryRun bool
)

func init() {
	auditListCmd.Flags().StringVar(&auditFilter.UserEmail, "user", "", "Only entries of this user email")
	auditListCmd.Flags().StringVar(&auditFilter.Action, "action", "", "Only entries with this action")
	auditListCmd.Flags().StringVar(&auditFilter.EntityType, "entity", "", "Only entries of this entity type")
	auditListCmd.Flags().IntVar(&auditFilter.Limit, "limit", 50, "Maximum number of entries")

	auditCleanupCmd.Flags().IntVar(&auditDays, "days", 180, "Delete entries older than N days")
	auditCleanupCmd.Flags().BoolVar(&auditDryRun, "dry-run", false, "Show what would be deleted without actually deleting")

	auditCmd.AddCommand(auditListCmd, auditCleanupCmd)
}

func openAudit() (*audit.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return audit.Open(cfg.Storage.AuditPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func runAuditList(cmd *cobra.Command, args []string) error {
	store, err := openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, total, err := store.List(cmd.Context(), auditFilter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tUSER\tACTION\tENTITY\tID\tIP\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.DateTime), e.UserEmail, e.Action, e.EntityType, e.EntityID, e.IPAddress, e.DetailString())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nShowing %d of %d entries\n", len(entries), total)
	return nil
}

func runAuditCleanup(cmd *cobra.Command, args []string) error {
	if auditDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	store, err := openAudit()
	if err != nil {
		return err
	}
	defer store.Close()

	cutoff := time.Now().AddDate(0, 0, -auditDays)

	if auditDryRun {
		fmt.Println("Dry run mode - no data will be deleted")
		count, err := store.CountBefore(cmd.Context(), cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("Audit log entries older than %d days: %d\n", auditDays, count)
		return nil
	}

	deleted, err := store.Cleanup(cmd.Context(), cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	fmt.Printf("Deleted %d audit log entries older than %d days\n", deleted, auditDays)
	return nil
}
