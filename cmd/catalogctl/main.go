package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Operate shop catalogs from the command line",
	Long:          "catalogctl imports supplier YAML feeds and inspects the catalog without going through the HTTP API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newShopsCmd())
	rootCmd.AddCommand(newCategoriesCmd())
}
