package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hmegen/hmegen/internal/aliasfile"
	"github.com/hmegen/hmegen/internal/common/httpclient"
	"github.com/hmegen/hmegen/internal/hme"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultCount = 5

// newHTTPClient builds the transport used by every command.
var newHTTPClient = func(cfg *Config) httpclient.HTTPClientInterface {
	return httpclient.NewClient(cfg)
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var count int
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and reserve Hide My Email aliases",
		Long: `Generate and reserve aliases in chunks of at most 10 concurrent requests.
Reserved aliases are appended to the output file (default "emails.txt").

Examples:
  hmegen generate
  hmegen generate --count 25`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, count)
		},
	}
	generateCmd.Flags().IntVarP(&count, "count", "c", defaultCount, "Number of aliases to generate")
	return generateCmd
}

// promptCount asks for the number of aliases to generate.
func promptCount(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, "How many iCloud emails you want to generate? ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("unable to read count: %w", err)
	}
	line = strings.TrimSpace(line)
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", line)
	}
	return n, nil
}

func runGenerate(cmd *cobra.Command, opts *rootOptions, count int) error {
	if count <= 0 {
		return fmt.Errorf("count must be a positive number, got %d", count)
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

	// notices go to stderr when stdout carries JSON
	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		out = cmd.ErrOrStderr()
	}

	client := hme.NewClient(newHTTPClient(cfg), hme.ClientOptions{
		Label:    cfg.Label,
		Note:     cfg.Note,
		LangCode: cfg.LangCode,
		DSID:     cfg.DSID,
	})
	gen := hme.NewGenerator(client, newConsoleReporter(out))

	rule := strings.Repeat("-", 40)
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Generating %d email(s)...\n", count)
	fmt.Fprintln(out, rule)

	aliases, err := gen.GenerateBatch(cmd.Context(), count)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}
	log.Debug().Int("requested", count).Int("reserved", len(aliases)).Bool("interrupted", interrupted).Msg("batch finished")

	fmt.Fprintln(out, rule)
	if err := aliasfile.Append(cfg.OutputFile, aliases); err != nil {
		return fmt.Errorf("failed to save aliases: %w", err)
	}
	if len(aliases) > 0 {
		okLabel.Fprintf(out, "Emails saved to %q\n", cfg.OutputFile)
	}
	if interrupted {
		warnLabel.Fprintf(out, "Interrupted, kept %d reserved email(s)\n", len(aliases))
	}
	okLabel.Fprintf(out, "Done! Generated %d email(s)\n", len(aliases))

	if opts.jsonOutput {
		printJSON(cmd.OutOrStdout(), map[string]any{
			"result": 1,
			"value":  nonNil(aliases),
		})
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
