package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/calyptra/mona/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mona",
		Short: "RAG chat backend with rule-based query routing",
		Long: `Mona is a retrieval-augmented chat backend. Incoming queries are routed
by a deterministic rule-based classifier: document questions go through
vector retrieval over the indexed sources, small talk goes straight to
the language model.`,
		Version: version.Version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(classifyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
