// file: launcher/command.go

package launcher

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"helix-console/config"
	"helix-console/internal/lifecycle"
	"helix-console/internal/logger"
)

// NewCommand returns the command line of an application: `server <config>`,
// `check <config>` and whatever the application adds through
// Bootstrap.AddCommand.
func NewCommand[T config.Configuration](newApp func() Application[T]) *cobra.Command {
	b := initialize(newApp)
	name := b.Application().Name()

	root := &cobra.Command{
		Use:          name,
		Short:        fmt.Sprintf("Run and manage the %s service", name),
		SilenceUsage: true,
		// If a subcommand is not provided, default to showing help.
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newServerCommand(name, newApp))
	root.AddCommand(newCheckCommand(newApp))
	for _, cmd := range b.Commands() {
		root.AddCommand(cmd)
	}
	return root
}

func newServerCommand[T config.Configuration](name string, newApp func() Application[T]) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "server <config>",
		Short: "Run the service until interrupted",
		Long: `Launches the service from a configuration file (or http(s):// or s3:// URL)
and runs it until SIGINT or SIGTERM. SIGHUP re-reads the configuration and
rebuilds the service in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			// Process-level logger for the run loop; each launch configures its own.
			runLog, err := logger.New(config.LogConfig{
				Level:      logLevel,
				OutputPath: "stderr",
				Encoding:   "console",
			}, name, nil)
			if err != nil {
				return err
			}
			defer runLog.Stop()

			createApp := func() (lifecycle.Application, error) {
				srv, err := LaunchFile(path, newApp)
				if err != nil {
					return nil, err
				}
				return srv, nil
			}
			return lifecycle.RunWithReload(createApp, runLog)
		},
	}

	addLogLevelFlag(cmd.Flags(), &logLevel)
	return cmd
}

func newCheckCommand[T config.Configuration](newApp func() Application[T]) *cobra.Command {
	var printConfig bool

	cmd := &cobra.Command{
		Use:   "check <config>",
		Short: "Validate a configuration without starting the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Check(args[0], newApp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !printConfig {
				fmt.Fprintf(out, "%s: configuration is valid\n", args[0])
				return nil
			}

			data, err := config.MarshalYAML(cfg)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&printConfig, "print", false, "print the normalized configuration as YAML")
	return cmd
}

func addLogLevelFlag(fs *pflag.FlagSet, level *string) {
	fs.StringVar(level, "log-level", "info", "level of the run-loop logger (debug, info, warn, error)")
}
