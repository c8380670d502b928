package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeprism/codeprism/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .codeprism.yml config file",
	Long:  `Writes a default configuration file to the current directory, ready to edit.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil {
		return fmt.Errorf("%s already exists", cfgFile)
	}
	cfg := config.DefaultConfig()
	if err := cfg.Save(cfgFile); err != nil {
		return fmt.Errorf("writing %s: %w", cfgFile, err)
	}
	fmt.Printf("Wrote %s\n", cfgFile)
	return nil
}
