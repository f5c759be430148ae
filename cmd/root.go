package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/kvt/cmd/kv"
	"github.com/ValentinKolb/kvt/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvt",
		Short: "typed key-value templates",
		Long: fmt.Sprintf(`kvt (v%s)

Typed access to a redis compatible key-value server. Keys and values are
converted with configurable serializers (string, gob, json, xml, yaml, msgpack)
and every operation runs exactly one command.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kvt",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvt v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.Commands...)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupClientFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
