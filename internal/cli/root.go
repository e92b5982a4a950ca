package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/MacroPower/fspath/pkg/log"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrLogHandlerFailed = errors.New("log handler failed")
)

func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       GetVersionString(),
	}

	cmd.PersistentFlags().String("log_level", "warn", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", "text", "Set the log format (text, logfmt, json)")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
		}

		h, err := log.CreateHandler(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLogHandlerFailed, err)
		}

		slog.SetDefault(slog.New(h))

		slog.Debug("ready to go")

		return nil
	}

	cmd.AddCommand(NewNormalizeCmd())
	cmd.AddCommand(NewJoinCmd())
	cmd.AddCommand(NewSplitCmd())
	cmd.AddCommand(NewAncestorsCmd())
	cmd.AddCommand(NewComponentsCmd())
	cmd.AddCommand(NewPrefixCmd())
	cmd.AddCommand(NewMapCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
