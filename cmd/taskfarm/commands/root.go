// Package commands implements the taskfarm demo CLI using cobra.
package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "taskfarm",
	Short: "Shared-memory task farm demo driver",
	Long: `taskfarm runs a fixed pool of workers fed by a priority queue.

Settings come from flags, from TASKFARM_* environment variables, or from
the file given with --config.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (yaml, toml or json)")
	pf.Int("workers", 0, "worker count (0 = host parallelism)")
	pf.Duration("tick", 0, "dispatcher tick interval (0 = default)")
	pf.Bool("pin", false, "pin workers to CPUs (linux)")
	pf.String("metrics-addr", "", "serve prometheus metrics on this address")

	for _, name := range []string{"workers", "tick", "pin", "metrics-addr"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

func loadConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix("TASKFARM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	return viper.ReadInConfig()
}
