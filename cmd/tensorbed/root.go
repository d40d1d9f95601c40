// The tensorbed command exercises the engine from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "tensorbed",
	Short: "Tensorbed CLI tool can perform common tasks related to running " +
		"the distributed tensor engine.",
	Long: `Tensorbed CLI tool can perform common tasks related to running ` +
		`the distributed tensor engine. Currently, it supports running an ` +
		`in-process multi-node demonstration.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
