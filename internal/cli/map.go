package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MacroPower/fspath/pkg/pathmap"
	"github.com/MacroPower/fspath/pkg/paths"
	"github.com/MacroPower/fspath/pkg/tracing"
)

const (
	mapDesc = `These commands load a YAML mapping of paths to values into a path map
and query it. Keys are normalized, so "a/b", "/a//b/" and "/a/./b" all refer
to the same entry. Gzip and zstd compressed input is detected and decoded.
`
	mapExample = `  fspath map <command> [arguments]... -f <file>
  # List every path below /home
  fspath map keys /home -f paths.yaml

  # List the entries directly below the root
  fspath map names -f paths.yaml.gz

  # Print the value stored at a path
  fspath map get /etc/hosts -f paths.yaml

  # Print all entries matching a glob
  cat paths.yaml.zst | fspath map glob '/home/**/*.toml' -f -

  # Draw the map as a tree
  fspath map tree -f paths.yaml
`
)

// NewMapCmd returns the map command.
func NewMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "map",
		Short:        "Query a path map loaded from YAML",
		Long:         mapDesc,
		Example:      mapExample,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("file", "f", "", "YAML file to load, or - for stdin (required)")
	must(cmd.MarkPersistentFlagFilename("file", "yaml", "yml", "gz", "zst"))
	must(cmd.MarkPersistentFlagRequired("file"))

	cmd.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout for loading the map")

	cmd.AddCommand(NewMapKeysCmd())
	cmd.AddCommand(NewMapNamesCmd())
	cmd.AddCommand(NewMapItemsCmd())
	cmd.AddCommand(NewMapGetCmd())
	cmd.AddCommand(NewMapGlobCmd())
	cmd.AddCommand(NewMapTreeCmd())

	return cmd
}

func NewMapKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys [ROOT]",
		Short: "List the paths at or below ROOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			m, err := loadMap(cc)
			if err != nil {
				return err
			}

			keys, err := m.Keys(rootArg(args))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			for k := range keys {
				if _, err := fmt.Fprintln(cc.OutOrStdout(), k); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}

			return nil
		},
	}
}

func NewMapNamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "names [ROOT]",
		Short: "List the entries directly below ROOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			m, err := loadMap(cc)
			if err != nil {
				return err
			}

			names, err := m.Names(rootArg(args))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			for name := range names {
				if _, err := fmt.Fprintln(cc.OutOrStdout(), name); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}

			return nil
		},
	}
}

func NewMapItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items [ROOT]",
		Short: "Print the entries at or below ROOT as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			m, err := loadMap(cc)
			if err != nil {
				return err
			}

			items, err := m.Items(rootArg(args))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			return writeItems(cc.OutOrStdout(), items)
		},
	}
}

func NewMapGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH",
		Short: "Print the value stored at PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			m, err := loadMap(cc)
			if err != nil {
				return err
			}

			v, err := m.Get(args[0])
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}

			return writeYAML(cc.OutOrStdout(), v)
		},
	}
}

func NewMapGlobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "glob PATTERN",
		Short: "Print the entries whose path matches PATTERN as YAML",
		Long: `Print the entries whose path matches PATTERN as YAML.

"*" matches any part of a single path component, "**" matches any number of
components, and "{a,b}" matches either alternative.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			m, err := loadMap(cc)
			if err != nil {
				return err
			}

			items, err := m.Match(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			return writeItems(cc.OutOrStdout(), items)
		},
	}
}

func NewMapTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [ROOT]",
		Short: "Draw the entries at or below ROOT as a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			m, err := loadMap(cc)
			if err != nil {
				return err
			}

			out := cc.OutOrStdout()

			t, err := renderTree(m, rootArg(args), isTerminal(out))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			if _, err := fmt.Fprintln(out, t); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			return nil
		},
	}
}

// loadMap reads the file named by the map command's flags into a new map.
func loadMap(cc *cobra.Command) (*pathmap.Sharded[*yaml.Node], error) {
	var merr error

	flags := cc.Flags()
	file, err := flags.GetString("file")
	if err != nil {
		merr = multierror.Append(merr, err)
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
	}

	span := tracing.NewLoggingTracer(slog.Default()).StartSpan(cc.Context(), "load_map")
	span.SetAttr(slog.String("file", file))
	defer span.Finish()

	var r io.Reader
	if file == "-" {
		r = cc.InOrStdin()
	} else {
		f, err := os.Open(file) //nolint:gosec // User-provided input file.
		if err != nil {
			return nil, fmt.Errorf("open map file: %w", err)
		}
		defer f.Close() //nolint:errcheck

		r = f
	}

	items, err := readMapFile(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	ctx, cancel := context.WithTimeout(cc.Context(), timeout)
	defer cancel()

	m := pathmap.NewSharded[*yaml.Node]()
	if err := m.SetMany(ctx, items); err != nil {
		return nil, fmt.Errorf("load %s: %w", file, err)
	}

	span.SetAttr(slog.Int("entries", m.Len()))

	return m, nil
}

func rootArg(args []string) string {
	if len(args) == 0 {
		return paths.Root
	}

	return args[0]
}
