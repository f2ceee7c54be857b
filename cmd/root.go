package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// NewRootCommand builds the latticectl root command and wires every
// subcommand onto it, in the same shape as the teacher's
// cmd.NewRootCommand.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "latticectl",
		Short: "latticectl administers a lattice storage engine.",
		Long: `latticectl runs and administers a lattice node: an
LSM-style partition writer paired with a MapReduce shard scheduler.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			return setAllConfig(v, cmd.Flags())
		},
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")

	rc.AddCommand(newServeCommand(stdin, stdout, stderr))
	rc.AddCommand(newInsertCommand(stdin, stdout, stderr))
	rc.AddCommand(newCommitCommand(stdin, stdout, stderr))
	rc.AddCommand(newCompactCommand(stdin, stdout, stderr))
	rc.AddCommand(newInspectCommand(stdin, stdout, stderr))
	rc.AddCommand(newGenerateConfigCommand(stdin, stdout, stderr))

	rc.SetOut(stderr)
	return rc
}

// setAllConfig reads configuration from the command line, the
// environment, and a config file (if specified), and applies it to flags
// in that priority order, mirroring the teacher's cmd/root.go.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix("LATTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	c := v.GetString("config")
	if c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading configuration file %q: %w", c, err)
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		value := v.GetString(f.Name)
		if value == "" {
			return
		}
		flagErr = f.Value.Set(value)
	})
	return flagErr
}
