package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/MacroPower/fspath/pkg/pathmap"
	"github.com/MacroPower/fspath/pkg/paths"
)

var (
	enumeratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).PaddingRight(1)
	rootStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("211"))
	dirStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	valueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// renderTree draws the entries at or below root. Nodes holding a scalar
// value are labeled "name: value".
func renderTree(m *pathmap.Sharded[*yaml.Node], root string, styled bool) (*tree.Tree, error) {
	p, err := paths.Normalize(root)
	if err != nil {
		return nil, err
	}

	p = paths.Abs(p)

	t := tree.Root(label(m, p, p, styled))
	if styled {
		t = t.EnumeratorStyle(enumeratorStyle).RootStyle(rootStyle)
	}

	if err := addChildren(m, t, p, styled); err != nil {
		return nil, err
	}

	return t, nil
}

func addChildren(m *pathmap.Sharded[*yaml.Node], t *tree.Tree, p string, styled bool) error {
	names, err := m.Names(p)
	if err != nil {
		return err
	}

	for name := range names {
		child, err := paths.Join(p, name)
		if err != nil {
			return err
		}

		hasChildren := false
		grandchildren, err := m.Names(child)
		if err != nil {
			return err
		}

		for range grandchildren {
			hasChildren = true

			break
		}

		if !hasChildren {
			t.Child(label(m, child, name, styled))

			continue
		}

		sub := tree.Root(label(m, child, name, styled))
		if styled {
			sub = sub.EnumeratorStyle(enumeratorStyle)
		}

		if err := addChildren(m, sub, child, styled); err != nil {
			return err
		}

		t.Child(sub)
	}

	return nil
}

func label(m *pathmap.Sharded[*yaml.Node], p, name string, styled bool) string {
	v, err := m.Get(p)
	if err != nil {
		if styled {
			return dirStyle.Render(name)
		}

		return name
	}

	if v.Kind != yaml.ScalarNode {
		return name
	}

	if styled {
		return name + ": " + valueStyle.Render(v.Value)
	}

	return name + ": " + v.Value
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}
