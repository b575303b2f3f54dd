package main

import (
	"strings"

	"github.com/ferrylane/river-conditions/internal/domain"
	"github.com/spf13/cobra"
)

type classification struct {
	Text   string        `json:"text" yaml:"text"`
	Status domain.Status `json:"status" yaml:"status"`
	Trend  domain.Trend  `json:"trend,omitempty" yaml:"trend,omitempty"`
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify TEXT...",
		Short: "Classify free board text",
		Long: `Classify free text the way a reach's board text is classified.
All arguments are joined with spaces.

Example:
  boardctl classify Caution stream increasing`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			status, trend := domain.Classify(text)
			return render(cmd, classification{Text: text, Status: status, Trend: trend})
		},
	}
}
