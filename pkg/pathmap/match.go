package pathmap

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/MacroPower/fspath/pkg/paths"
)

// ErrBadPattern indicates a glob pattern is malformed.
var ErrBadPattern = errors.New("bad pattern")

// Match returns a sequence of all (path, value) pairs whose path matches the
// given glob pattern, in the same order as [PathMap.Keys].
//
// Patterns use the doublestar syntax: "*" matches within a single component,
// "**" matches across components, and "{a,b}" alternates. Relative patterns
// are treated as absolute, and the pattern's literal leading components are
// normalized like any other path. Only the subtree below them is traversed.
//
//	m.Match("/home/*/.config/**/*.toml")
func (m *PathMap[V]) Match(pattern string) (iter.Seq2[string, V], error) {
	pattern, comps, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	return func(yield func(string, V) bool) {
		m.walk(comps, func(key string, n *node[V]) bool {
			if !matches(pattern, key) {
				return true
			}

			return yield(key, n.value)
		})
	}, nil
}

// Match returns a sequence of all (path, value) pairs whose path matches the
// given glob pattern. See [PathMap.Match].
func (s *Sharded[V]) Match(pattern string) (iter.Seq2[string, V], error) {
	pattern, comps, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	items, err := s.Items(paths.Root + strings.Join(comps, paths.Separator))
	if err != nil {
		return nil, err
	}

	return func(yield func(string, V) bool) {
		for k, v := range items {
			if !matches(pattern, k) {
				continue
			}

			if !yield(k, v) {
				return
			}
		}
	}, nil
}

// compilePattern makes pattern absolute, normalizes its literal base,
// validates it, and returns the components of that base.
func compilePattern(pattern string) (string, []string, error) {
	pattern = paths.Abs(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return "", nil, fmt.Errorf("%w: %s", ErrBadPattern, pattern)
	}

	// Escaped meta characters in the base would be mangled by normalization,
	// so fall back to walking the whole map.
	base, rest := doublestar.SplitPattern(pattern)
	if strings.Contains(base, `\`) {
		return pattern, nil, nil
	}

	base, err := paths.Normalize(base)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBadPattern, err)
	}

	base = paths.Abs(base)

	switch {
	case rest == "":
		pattern = base
	case base == paths.Root:
		pattern = base + rest
	default:
		pattern = base + paths.Separator + rest
	}

	comps, err := paths.Components(base)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBadPattern, err)
	}

	return pattern, comps, nil
}

func matches(pattern, key string) bool {
	ok, err := doublestar.Match(pattern, key)

	return err == nil && ok
}
