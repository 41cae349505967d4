package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gingfrederik/docx"
	"github.com/spf13/cobra"

	"github.com/tablescout/tablescout/internal/adapters/csvlist"
	"github.com/tablescout/tablescout/internal/cli"
	"github.com/tablescout/tablescout/internal/presentation/diff"
	"github.com/tablescout/tablescout/pkg/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Work with the curated list",
	Long: `Read-only views of the curated list: show it, export it as a Word
document, or diff it against a CSV backup. Changing the list goes through
the chat, where every change needs an approval.`,
}

var listShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the curated list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLists(cmd, func(entries []domain.ListEntry) error {
			printEntries(os.Stdout, entries)
			return nil
		})
	},
}

var listExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the curated list as a Word document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := fmt.Sprintf("tablescout-list_%s.docx", time.Now().Format("2006-01-02"))
		if len(args) > 0 {
			filename = args[0]
		}
		return withLists(cmd, func(entries []domain.ListEntry) error {
			if err := exportDocx(entries, filename); err != nil {
				return fmt.Errorf("export list: %w", err)
			}
			fmt.Printf("Exported %d entries to %s\n", len(entries), filename)
			return nil
		})
	},
}

var listDiffCmd = &cobra.Command{
	Use:   "diff <backup.csv>",
	Short: "Diff the live list against a CSV backup",
	Long: `Compares the configured list against a CSV snapshot taken earlier.
Lines prefixed + exist only in the live list, lines prefixed - only in
the backup.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backup, err := csvlist.New(args[0])
		if err != nil {
			return fmt.Errorf("open backup %q: %w", args[0], err)
		}
		before, err := backup.FetchAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("read backup %q: %w", args[0], err)
		}
		return withLists(cmd, func(after []domain.ListEntry) error {
			rendered, changed := diff.Entries(before, after)
			if !changed {
				fmt.Println("No differences.")
				return nil
			}
			fmt.Print(rendered)
			return nil
		})
	},
}

// printEntries writes the numbered plain-text view of the list.
func printEntries(w io.Writer, entries []domain.ListEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "The list is empty.")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(w, "%d. %s", i+1, e.Name)
		if e.Cuisine != "" {
			fmt.Fprintf(w, " - %s", e.Cuisine)
		}
		if p := e.Price.String(); p != "" {
			fmt.Fprintf(w, " (%s)", p)
		}
		if score, ok := e.OverallScore(); ok {
			fmt.Fprintf(w, " - %.1f/5.0", score)
		}
		fmt.Fprintln(w)
		if e.Description != "" {
			fmt.Fprintf(w, "   %s\n", e.Description)
		}
	}
}

// withLists opens the configured list store and hands its entries to fn.
func withLists(cmd *cobra.Command, fn func([]domain.ListEntry) error) error {
	opts := globalOptions(cmd)
	logger, err := opts.Logger()
	if err != nil {
		return err
	}
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	lists, err := cli.OpenLists(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	entries, err := lists.FetchAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch list: %w", err)
	}
	return fn(entries)
}

// exportDocx writes the entries as a dated Word report, one paragraph block
// per restaurant.
func exportDocx(entries []domain.ListEntry, filename string) error {
	f := docx.NewFile()

	title := f.AddParagraph().AddText("Curated Restaurant List")
	title.Size(20)

	f.AddParagraph().AddText(fmt.Sprintf("Exported %s - %d restaurants", time.Now().Format("January 2, 2006"), len(entries)))
	f.AddParagraph()

	for _, e := range entries {
		heading := e.Name
		if p := e.Price.String(); p != "" {
			heading += " (" + p + ")"
		}
		name := f.AddParagraph().AddText(heading)
		name.Size(14)

		if e.Cuisine != "" {
			f.AddParagraph().AddText("Cuisine: " + e.Cuisine)
		}
		if score, ok := e.OverallScore(); ok {
			f.AddParagraph().AddText(fmt.Sprintf("Score: %.1f/5.0", score))
		}
		if e.Description != "" {
			f.AddParagraph().AddText(e.Description)
		}
		if e.BookingURL != "" {
			f.AddParagraph().AddText("Booking: " + e.BookingURL)
		}
		if !e.AddedAt.IsZero() {
			f.AddParagraph().AddText("Added " + e.AddedAt.Format("January 2, 2006"))
		}
		f.AddParagraph()
	}

	return f.Save(filename)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listShowCmd)
	listCmd.AddCommand(listExportCmd)
	listCmd.AddCommand(listDiffCmd)
}
