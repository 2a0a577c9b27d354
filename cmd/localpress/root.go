package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/localpress/localpress/internal/app"
	"github.com/localpress/localpress/internal/config"
)

var (
	cfgFile string
	appCfg  *config.Config
)

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"log-level": "logging.level",
	"http":      "server.http_addr",
	"mcp":       "server.mcp_mode",
	"backend":   "cms.backend",
	"provider":  "news.provider",
}

var rootCmd = &cobra.Command{
	Use:          "localpress",
	Short:        "Hyper-local news aggregation",
	Long:         "LocalPress merges newsroom articles with external news coverage for US zip codes.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.NewViper(cfgFile)
		if err != nil {
			return err
		}
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		appCfg = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("backend", "", "CMS backend (cosmic, postgres, sqlite)")
	rootCmd.PersistentFlags().String("provider", "", "external news provider (newsdata, rss)")

	rootCmd.AddCommand(serveCmd, newsCmd, searchCmd, areaCmd, seedCmd)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// newApp validates the loaded config and wires the application.
func newApp() (*app.App, error) {
	if err := appCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.New(appCfg)
}

// withApp runs fn against a wired application and releases it afterwards.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
