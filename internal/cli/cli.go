// Package cli implements the server command line.
package cli

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/config"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/logging"
)

func init() {
	cobra.EnableCommandSorting = false
}

type command struct {
	root    *cobra.Command
	config  *viper.Viper
	cfgFile string
	fs      afero.Fs
}

type option func(*command)

// WithArgs sets the arguments the command is executed with.
func WithArgs(a ...string) option {
	return func(c *command) {
		c.root.SetArgs(a)
	}
}

func WithOutput(w io.Writer) option {
	return func(c *command) {
		c.root.SetOut(w)
		c.root.SetErr(w)
	}
}

// WithFS replaces the filesystem files are read from.
func WithFS(fs afero.Fs) option {
	return func(c *command) {
		c.fs = fs
	}
}

func newCommand(opts ...option) *command {
	c := &command{
		root: &cobra.Command{
			Use:           "server",
			Short:         "Merkle root service for chunked uploads",
			SilenceErrors: true,
			SilenceUsage:  true,
		},
		fs: afero.NewOsFs(),
	}
	c.root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return c.initConfig(cmd)
	}
	c.root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (yaml, toml or json)")
	c.root.PersistentFlags().String(config.OptionVerbosity, "info", "log verbosity: silent, error, warn, info, debug, trace")

	c.initServeCmd()
	c.initHashCmd()
	c.initVersionCmd()

	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *command) Execute() error {
	return c.root.Execute()
}

// Execute parses command line arguments and runs the matching command.
func Execute() error {
	return newCommand(WithArgs(os.Args[1:]...)).Execute()
}

func (c *command) initConfig(cmd *cobra.Command) error {
	v, err := config.NewViper(c.cfgFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	c.config = v
	return nil
}

func (c *command) newLogger(cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(c.config.GetString(config.OptionVerbosity))
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), level), nil
}
