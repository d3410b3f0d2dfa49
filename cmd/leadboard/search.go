package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foxzi/leadboard/internal/leadswift"
	"github.com/foxzi/leadboard/internal/web/handlers"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "LeadSwift search commands",
}

var searchListCmd = &cobra.Command{
	Use:   "list [campaign-id]",
	Short: "List the searches of a LeadSwift campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchList,
}

var searchLeadsCmd = &cobra.Command{
	Use:   "leads [search-id]",
	Short: "List the leads found by a search",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchLeads,
}

var searchSyncCmd = &cobra.Command{
	Use:   "sync [search-id]",
	Short: "Store the leads of a search in the backend database",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchSync,
}

var searchQuery string

func init() {
	searchLeadsCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Only show leads whose name, email, company or status contains this text")

	searchCmd.AddCommand(searchListCmd, searchLeadsCmd, searchSyncCmd)
}

func leadSwiftClient() (*leadswift.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client := leadswift.New(cfg.LeadSwift.BaseURL, cfg.LeadSwift.APIKey)
	if !client.Configured() {
		return nil, leadswift.ErrNotConfigured
	}
	return client, nil
}

func runSearchList(cmd *cobra.Command, args []string) error {
	client, err := leadSwiftClient()
	if err != nil {
		return err
	}

	searches, err := client.FindSearches(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(searches) == 0 {
		fmt.Println("No searches found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tSTATUS\tLEADS\tCREATED")
	for _, s := range searches {
		count := "-"
		if s.Count != nil {
			count = fmt.Sprint(*s.Count)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Location, s.Status, count, s.CreatedAt)
	}
	return w.Flush()
}

func runSearchLeads(cmd *cobra.Command, args []string) error {
	client, err := leadSwiftClient()
	if err != nil {
		return err
	}

	leads, err := client.LeadsForSearch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	leads = handlers.FilterLeads(leads, searchQuery)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tCOMPANY\tSTATUS\tWEBSITE")
	for _, l := range leads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.Name, l.Email, l.Company, l.Status, l.Website)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d leads\n", len(leads))
	return nil
}

func runSearchSync(cmd *cobra.Command, args []string) error {
	client, err := leadSwiftClient()
	if err != nil {
		return err
	}

	count, err := client.SyncLeads(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("No leads to sync")
		return nil
	}
	fmt.Printf("Synced %d leads to database\n", count)
	return nil
}
