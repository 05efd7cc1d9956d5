// Package cmd provides CLI command implementations
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/UnimodMapper/pkg/config"
	"github.com/ChrisMcGann/UnimodMapper/pkg/logging"
	"github.com/ChrisMcGann/UnimodMapper/pkg/mapper"
)

// app holds the persistent flags and the mapper built from them.
type app struct {
	configPath  string
	unimodPath  string
	usermodPath string
	logLevel    string

	cfg    *config.Config
	mapper *mapper.Mapper
}

// NewRootCmd builds the command tree with fresh flag state.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "unimodmapper",
		Short: "unimodmapper - Unimod modification lookup and mapping tool",
		Long: `unimodmapper indexes unimod.xml (plus an optional usermod.xml overlay)
by name, record id, monoisotopic mass and elemental composition.

It can:
- Look up any key from any other key
- Find modifications by rounded mass
- Map search engine modification requests to unimod records
- Add user defined modifications to usermod.xml
- Export the reference records to SQLite`,
		Version:           "1.0.0",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: "+config.DefaultFileName+" if present)")
	rootCmd.PersistentFlags().StringVar(&a.unimodPath, "unimod", "", "Path to unimod.xml")
	rootCmd.PersistentFlags().StringVar(&a.usermodPath, "usermod", "", "Path to usermod.xml (default: next to unimod.xml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newLookupCmd(a),
		newApproxCmd(a),
		newMapCmd(a),
		newAddCmd(a),
		newExportCmd(a),
	)
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

// setup merges config file, environment and flags, then creates the mapper.
// Nothing is parsed until a command asks for the index.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path, required := a.configPath, true
	if path == "" {
		path, required = config.DefaultFileName, false
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("unimod") {
		cfg.UnimodPath = a.unimodPath
	}
	if flags.Changed("usermod") {
		cfg.UsermodPath = a.usermodPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.mapper = mapper.New(mapper.Options{
		UnimodPath:      cfg.UnimodPath,
		UsermodPath:     cfg.UsermodPath,
		ExtraPaths:      cfg.ExtraPaths,
		ApproxCacheSize: cfg.ApproxCacheSize,
		Logger:          logging.New(cfg.LogLevel, cmd.ErrOrStderr()),
	})
	return nil
}
