// Command dfgminer discovers a filtered directly-follows model from traces
// and answers reachability questions about it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "dfgminer",
		Short:         "Process discovery over directly-follows graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.register(rootCmd)

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Build, filter and report the process model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, opts)
		},
	}

	var from, to string
	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "Shortest path between two activities of the filtered model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaths(cmd, opts, from, to)
		},
	}
	pathsCmd.Flags().StringVar(&from, "from", "", "Source activity")
	pathsCmd.Flags().StringVar(&to, "to", "", "Target activity")
	_ = pathsCmd.MarkFlagRequired("from")
	_ = pathsCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(discoverCmd, pathsCmd)
	return rootCmd
}
