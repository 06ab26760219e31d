package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tphakala/go-swresample/internal/config"
	"github.com/tphakala/go-swresample/internal/logging"
)

// app carries state shared by all subcommands.
type app struct {
	v           *viper.Viper
	cfg         *config.Config
	logger      *zap.Logger
	cleanup     func()
	configPath  string
	printConfig bool
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.NewViper(), logger: zap.NewNop(), cleanup: func() {}}

	root := &cobra.Command{
		Use:          "swr-resample",
		Short:        "Sample rate conversion through the swresample host",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.cleanup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	flags.BoolVar(&a.printConfig, "print-config", false, "Print the effective configuration before running")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "console", "Log encoding: console or json")
	flags.Bool("log-file", false, "Also write logs to a rotating file")
	bindKey(flags, "log-level", "log.level")
	bindKey(flags, "log-format", "log.format")
	bindKey(flags, "log-file", "log.file.enabled")

	root.AddCommand(
		newConvertCommand(a),
		newDelayCommand(a),
		newFilterCommand(a),
		newFormatsCommand(),
	)
	return root
}

// setup loads and validates configuration, then builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.bindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, cleanup, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	a.logger, a.cleanup = logger.Named("swr-resample"), cleanup

	if a.printConfig {
		out, err := cfg.YAML()
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		_, _ = cmd.OutOrStdout().Write(out)
	}
	a.logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("file", a.v.ConfigFileUsed()))
	return nil
}

// viperKey annotates a flag with the configuration key it overrides.
const viperKey = "swr-resample/viper-key"

// bindKey marks a flag as overriding a configuration key. Binding happens in
// setup, for the running command only, since subcommands reuse flag names.
func bindKey(flags *pflag.FlagSet, name, key string) {
	if err := flags.SetAnnotation(name, viperKey, []string{key}); err != nil {
		panic(fmt.Sprintf("annotate flag %s: %v", name, err))
	}
}

// bindFlags routes annotated flags through viper so they override file and
// env settings only when set on the command line.
func (a *app) bindFlags(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[viperKey]; len(keys) > 0 && err == nil {
			err = a.v.BindPFlag(keys[0], f)
		}
	})
	if err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}
