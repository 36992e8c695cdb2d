package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	domintent "github.com/calyptra/mona/internal/domain/intent"
	intentuc "github.com/calyptra/mona/internal/usecase/intent"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [query]",
		Short: "Classify a query without starting the server",
		Long: `Runs the rule-based classifier on a single query and prints the full
result with diagnostics as JSON. Useful for tuning rules and debugging
routing decisions. No database or provider connection is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()

			classifier, err := intentuc.New(domintent.DefaultConfig(), logger)
			if err != nil {
				return fmt.Errorf("create classifier: %w", err)
			}

			result, err := classifier.Classify(args[0])
			if err != nil {
				return fmt.Errorf("classify: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
