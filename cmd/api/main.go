package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/inspecta/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "inspecta",
	Short: "Industrial inspection service",
	Long:  "Records inspections and findings with photos, and enriches finding descriptions with a text-generation model.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// path config.yaml
		path := "config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}

		c, err := config.Load(path)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = zap.L().Sync()
	},
	// bare invocation serves
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
