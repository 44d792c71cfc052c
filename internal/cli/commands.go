package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/hmegen/hmegen/internal/common/logtrace"
	"github.com/spf13/cobra"
)

// ErrAlreadyHandled is returned by commands that have already printed their error.
var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed, color.Bold)
var warnLabel = color.New(color.FgYellow, color.Bold)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	cookieFile string
	jsonOutput bool
	debug      bool
}

// newRootCmd builds the command tree. Running it without a subcommand asks for a count
// on stdin and generates that many aliases.
func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "hmegen [command] [flags]",
		Short: "hmegen - bulk generator for iCloud Hide My Email aliases",
		Long: `hmegen generates and reserves iCloud Hide My Email aliases in bulk and lists
the aliases that already exist on the account.

The session cookie is read from "cookie.txt" (or --cookie-file, or HME_COOKIE).

Examples:
  # Ask how many aliases to generate
  hmegen

  # Generate 20 aliases and append them to emails.txt
  hmegen generate --count 20

  # List active aliases whose label contains "shop"
  hmegen list --search shop

  # List inactive aliases as JSON
  hmegen list --inactive -j`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logtrace.InitLogger(opts.debug || envDebug())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := promptCount(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runGenerate(cmd, opts, count)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().StringVarP(&opts.cookieFile, "cookie-file", "", "", "File holding the iCloud session cookie (default \"cookie.txt\")")
	rootCmd.PersistentFlags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd(opts))
	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd, opts
}

// Execute runs the CLI and returns the process exit code. SIGINT and SIGTERM cancel
// the running command.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd, opts := newRootCmd()
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrAlreadyHandled) {
		return 1
	}
	if opts.jsonOutput {
		printJSON(os.Stdout, map[string]string{
			"error": err.Error(),
		})
	} else {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return 1
}

// newVersionCmd creates and returns a new version command
func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of hmegen",
		Run: func(cmd *cobra.Command, args []string) {
			configPath := opts.configFile
			if configPath == "" {
				var err error
				configPath, err = GetDefaultConfigPath()
				if err != nil {
					configPath = "unknown"
				}
			}

			if opts.jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "hmegen %s\n", getCLIVersion())
				fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", configPath)
			}
		},
	}
}

// printJSON writes data as indented JSON.
func printJSON(w io.Writer, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.3.0"
}
