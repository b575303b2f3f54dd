package main

import (
	"fmt"
	"os"

	"github.com/ferrylane/river-conditions/internal/domain"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a saved board page",
		Long: `Parse a saved HTML page with the primary (guidance) or fallback
(visitor moorings) parser and print the classified records.

Example:
  curl -s https://www.gov.uk/guidance/river-thames-current-river-conditions > page.html
  boardctl parse --source primary page.html`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	cmd.Flags().String("source", string(domain.SourcePrimary), "parser to use: primary or fallback")
	cmd.Flags().Int("max-line-length", domain.DefaultMaxLineLength, "primary parser candidate line limit")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	doc, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	source, _ := cmd.Flags().GetString("source")
	maxLen, _ := cmd.Flags().GetInt("max-line-length")

	var records []domain.ReachStatus
	switch domain.Source(source) {
	case domain.SourcePrimary:
		records = domain.ParseGuidance(string(doc), maxLen)
	case domain.SourceFallback:
		records = domain.ParseMoorings(string(doc))
	default:
		return fmt.Errorf("unknown source %q (want primary or fallback)", source)
	}
	if records == nil {
		records = []domain.ReachStatus{}
	}
	return render(cmd, records)
}
