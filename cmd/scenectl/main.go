package main

import (
	"os"

	"github.com/milk9111/scenecore/app"
	"github.com/milk9111/scenecore/config"
	"github.com/milk9111/scenecore/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "scenectl",
		Short:         "Run, check, and inspect scenecore scenes without a window",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel == "" {
				return nil
			}
			logger, err := logging.New(opts.logLevel)
			if err != nil {
				return err
			}
			logging.SetLogger(logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to the engine config")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log to stderr at this level (debug, info, warn, error)")

	root.AddCommand(
		NewSimulateCmd(opts),
		NewValidateCmd(opts),
		NewTermCmd(opts),
	)
	return root
}

// open builds a headless app without hot reload.
func (o *rootOptions) open() (*app.App, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	watch := false
	return app.New(cfg, app.Options{Headless: true, Watch: &watch})
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
