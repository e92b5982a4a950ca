package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/MacroPower/fspath/pkg/paths"
)

func NewNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize PATH...",
		Short: "Print the canonical form of each path",
		Example: `  fspath normalize '/foo//bar/frob/../baz'
  fspath normalize 'foo\bar\baz' a/./b`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			return eachPath(cc.OutOrStdout(), args, func(p string) (string, error) {
				return paths.Normalize(p)
			})
		},
	}
}

func NewJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "join PATH...",
		Short:   "Join paths into one canonical path",
		Example: `  fspath join /srv data ../logs`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			p, err := paths.Join(args...)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			return printLines(cc.OutOrStdout(), []string{p})
		},
	}
}

func NewSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split PATH",
		Short: "Split a path into its parent and final component",
		Long:  "Prints the parent and the final component of PATH, separated by a tab.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			head, tail, err := paths.Split(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			return printLines(cc.OutOrStdout(), []string{head + "\t" + tail})
		},
	}
}

func NewAncestorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ancestors PATH",
		Short: "Print every ancestor of a path, starting at the root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			reverse, err := cc.Flags().GetBool("reverse")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			ancestors, err := paths.Ancestors(args[0], reverse)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			return printLines(cc.OutOrStdout(), ancestors)
		},
	}
	cmd.Flags().BoolP("reverse", "r", false, "Start at the path itself and end at the root")

	return cmd
}

func NewComponentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "components PATH",
		Short: "Print the components of a path",
		Example: `  fspath components /a/b/c
  fspath components /a/b/c --max-splits 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			maxSplits, err := cc.Flags().GetInt("max-splits")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			comps, err := paths.SplitComponents(args[0], maxSplits)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			return printLines(cc.OutOrStdout(), comps)
		},
	}
	cmd.Flags().IntP("max-splits", "n", -1, "Split at most this many times; the remainder is kept whole")

	return cmd
}

func NewPrefixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefix PREFIX PATH",
		Short: "Report whether PREFIX is a component-wise prefix of PATH",
		Example: `  fspath prefix foo/bar foo/bar/spam.txt
  fspath prefix --strip /srv/data /srv/data/logs/app.log`,
		Args: cobra.ExactArgs(2),
		RunE: func(cc *cobra.Command, args []string) error {
			strip, err := cc.Flags().GetBool("strip")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			out := cc.OutOrStdout()

			if !strip {
				return printLines(out, []string{strconv.FormatBool(paths.IsPrefix(args[0], args[1]))})
			}

			rest, err := paths.StripPrefix(args[0], args[1])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			return printLines(out, []string{rest})
		},
	}
	cmd.Flags().BoolP("strip", "s", false, "Print PATH with PREFIX removed instead")

	return cmd
}

// eachPath prints fn applied to every path. Failures do not stop the
// remaining paths from being printed and are returned together.
func eachPath(w io.Writer, args []string, fn func(string) (string, error)) error {
	var merr error

	for _, arg := range args {
		p, err := fn(arg)
		if err != nil {
			merr = multierror.Append(merr, err)

			continue
		}

		if _, err := fmt.Fprintln(w, p); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
	}

	return nil
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return nil
}
