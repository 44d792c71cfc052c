package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hmegen/hmegen/internal/hme"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type listOptions struct {
	active   bool
	inactive bool
	search   string
}

// newListCmd represents the list command
func newListCmd(opts *rootOptions) *cobra.Command {
	lopts := &listOptions{}
	listCmd := &cobra.Command{
		Use:   "list [flags]",
		Short: "List the Hide My Email aliases of the account",
		Long: `List aliases filtered by activity and, optionally, by a regular expression
matched anywhere in the label.

Examples:
  # List active aliases
  hmegen list

  # List inactive aliases
  hmegen list --inactive

  # List active aliases whose label starts with "shop"
  hmegen list --search '^shop'

  # List in JSON format
  hmegen list -j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, lopts)
		},
	}

	listCmd.Flags().BoolVar(&lopts.active, "active", true, "Show active aliases")
	listCmd.Flags().BoolVar(&lopts.inactive, "inactive", false, "Show inactive aliases (overrides --active)")
	listCmd.Flags().StringVarP(&lopts.search, "search", "s", "", "Regular expression matched against labels")
	return listCmd
}

func runList(cmd *cobra.Command, opts *rootOptions, lopts *listOptions) error {
	filter := hme.Filter{
		Active:       !lopts.inactive && lopts.active,
		LabelPattern: lopts.search,
	}
	// fail on a bad pattern before asking for the cookie
	if _, err := hme.FilterEntries(nil, filter); err != nil {
		return err
	}

	cfg, err := loadCommandConfig(opts)
	if err != nil {
		return err
	}
	if err := resolveCredential(cfg); err != nil {
		if errors.Is(err, hme.ErrConfiguration) && !opts.jsonOutput {
			printCredentialHelp(cmd.ErrOrStderr(), cfg, err)
			return ErrAlreadyHandled
		}
		return err
	}

	client := hme.NewClient(newHTTPClient(cfg), hme.ClientOptions{
		Label:    cfg.Label,
		Note:     cfg.Note,
		LangCode: cfg.LangCode,
		DSID:     cfg.DSID,
	})
	entries, err := hme.NewLister(client).List(cmd.Context(), filter)
	if err != nil {
		if errors.Is(err, hme.ErrListFailed) && !opts.jsonOutput {
			errorLabel.Fprintf(cmd.ErrOrStderr(), "[ERR] Failed to list. Reason: %s\n", err.Error())
			return ErrAlreadyHandled
		}
		return err
	}

	if opts.jsonOutput {
		if entries == nil {
			entries = []hme.ListingEntry{}
		}
		printJSON(cmd.OutOrStdout(), map[string]any{
			"result": 1,
			"value":  entries,
		})
		return nil
	}
	printEntries(cmd.OutOrStdout(), filter.Active, entries)
	return nil
}

// printEntries renders entries as a table under a heading naming the selection.
func printEntries(w io.Writer, active bool, entries []hme.ListingEntry) {
	kind := "inactive aliases"
	if active {
		kind = "active aliases"
	}
	fmt.Fprintf(w, "%s (%d)\n\n", cases.Title(language.English).String(kind), len(entries))
	if len(entries) == 0 {
		fmt.Fprintln(w, "No aliases found.")
		return
	}

	fmt.Fprintf(w, "%-30s %-42s %-25s %-6s\n", "LABEL", "HIDE MY EMAIL", "CREATED", "ACTIVE")
	fmt.Fprintln(w, strings.Repeat("-", 106))
	for _, e := range entries {
		fmt.Fprintf(w, "%-30s %-42s %-25s %-6t\n",
			truncate(e.Label, 30),
			e.Address,
			formatTimestampInLocalTimezone(e.CreatedAt),
			e.IsActive,
		)
	}
}

// formatTimestampInLocalTimezone formats a timestamp in local timezone
func formatTimestampInLocalTimezone(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05 MST")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
