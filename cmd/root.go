// -- cmd/root.go --
package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/config"
	"github.com/xkilldash9x/capsule-browser/internal/observability"
)

// newRootCmd builds an isolated command tree. The returned config is filled
// in by PersistentPreRunE before any subcommand runs.
func newRootCmd() (*cobra.Command, *config.Config) {
	var cfgFile string
	cfg := config.NewDefaultConfig()
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "capsule",
		Short:         "Capsule renders and runs interactive capsule documents.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(v, cfgFile); err != nil {
				return err
			}
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			loaded, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(cfg.Logger)
				return err
			}
			*cfg = *loaded

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting capsule", zap.String("version", Version), zap.String("command", cmd.Name()))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./capsule.yaml)")
	rootCmd.PersistentFlags().Int("width", 0, "viewport width in pixels")
	rootCmd.PersistentFlags().Int("height", 0, "viewport height in pixels")
	rootCmd.PersistentFlags().Duration("callback-timeout", 0, "interrupt event callbacks running longer than this (0 disables)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newOpenCmd(cfg),
		newRenderCmd(cfg),
		newInspectCmd(cfg),
		newVersionCmd(),
	)
	return rootCmd, cfg
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	rootCmd, _ := newRootCmd()
	err := rootCmd.Execute()
	observability.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"width":            "viewport.width",
	"height":           "viewport.height",
	"callback-timeout": "script.callback_timeout",
	"watch":            "watch.enabled",
}

// bindFlags makes explicitly set flags override the file and environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// initializeConfig reads the config file, if any, and layers CAPSULE_*
// environment variables over it.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	config.SetDefaults(v)
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return fmt.Errorf("expanding config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("capsule")
		v.SetConfigType("yaml")
	}
	config.BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
