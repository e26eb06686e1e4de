// Command tavoo is a headless stand-in for the host media player UI that
// spec.md §1 places out of scope: it demultiplexes a transport stream,
// feeds its caption packets to internal/renderer, and prints the caption
// primitives emitted for each tick.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var debugLogging bool

var rootCmd = &cobra.Command{
	Use:           "tavoo",
	Short:         "ARIB caption renderer for ISDB transport streams",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "use the development logger instead of the production one")
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
