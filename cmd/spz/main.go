// Command spz is a thin CLI shim over the spz codec package: it parses
// argv, reads/writes files, and calls the pure in-memory encode/decode API.
// It contains no codec logic of its own.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spz [command]",
	Short: "inspect and convert Gaussian-splat point clouds",
	Long:  ``,
}

func main() {
	rootCmd.AddCommand(infoCmd, convertCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
