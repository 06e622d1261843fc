package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/config"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/monitoring"
)

const app = "scorectl"

// Actual version can be specified in build command.
var version = "unknown"

type cli struct {
	v       *viper.Viper
	cfgFile string
	logger  *monitoring.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           app,
		Short:         "scorectl scores recorded interview answers offline and manages scoring profiles",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "server config file; supplies the profiles_dir and profile defaults")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "print results as JSON")
	flags.String("profiles-dir", "", "directory holding scoring profile YAML files")
	flags.StringP("profile", "p", "", "scoring profile name")

	for _, name := range []string{"debug", "json", "profiles-dir", "profile"} {
		if err := c.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding %s flag: %v", name, err))
		}
	}

	root.AddCommand(c.scoreCmd(), c.validateCmd(), c.profileCmd(), versionCmd())
	return root
}

// initConfig layers flags over the server config so the CLI scores with the
// same profile the server would load.
func (c *cli) initConfig(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if c.v.GetBool("debug") {
		level = slog.LevelDebug
	}
	c.logger = monitoring.NewLoggerTo(cmd.ErrOrStderr(), level)

	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	c.v.SetDefault("profiles-dir", cfg.ProfilesDir)
	c.v.SetDefault("profile", cfg.Profile)

	c.logger.Debug("configuration loaded",
		"config", c.cfgFile,
		"profiles_dir", c.v.GetString("profiles-dir"),
		"profile", c.v.GetString("profile"),
	)
	return nil
}

func (c *cli) store() *analysis.ProfileStore {
	return analysis.NewProfileStore(c.v.GetString("profiles-dir"))
}

func (c *cli) loadProfile() (analysis.ScoringConfig, error) {
	return c.store().Load(c.v.GetString("profile"))
}

// print writes v as indented JSON when --json is set and calls text otherwise.
func (c *cli) print(w io.Writer, v interface{}, text func(io.Writer) error) error {
	if c.v.GetBool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, version)
		},
	}
}
