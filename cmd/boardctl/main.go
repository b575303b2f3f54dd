// Package main is the entry point for the boardctl operator CLI.
//
// boardctl runs the board status extractor once against the live sources,
// outside the service, so operators can see what the service would serve
// and why.
//
// Usage:
//
//	boardctl boards [--debug] [-o json|yaml]  # One extraction, no cache
//	boardctl parse --source primary page.html  # Parse a saved page
//	boardctl classify Strong stream            # Classify free text
//	boardctl version                           # Show version info
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "boardctl",
		Short: "Inspect Thames river board statuses",
		Long: `boardctl inspects how river board statuses are extracted.

It reads the same environment variables as the riverd service
(BOARDS_PRIMARY_URL, BOARDS_FALLBACK_URL, BOARDS_MIN_RECORDS, ...)
and never touches the service cache.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("output", "o", "yaml", "output format: json or yaml")
	root.PersistentFlags().BoolP("verbose", "v", false, "log extraction progress to stderr")

	root.AddCommand(newBoardsCmd(), newParseCmd(), newClassifyCmd(), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "boardctl %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

// newLogger logs to stderr so stdout stays machine-readable.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func render(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	return encode(cmd.OutOrStdout(), format, v)
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
