package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "codeprism",
	Short: "Multi-repo source indexing and hybrid retrieval",
	Long: `codeprism walks one or more repositories, builds a cross-file
relationship graph, detects flows, and generates LLM-enriched cards that
a hybrid search index (FTS5 + vector + cross-encoder rerank) can later
retrieve by natural-language query.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".codeprism.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
