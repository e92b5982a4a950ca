package pathmap

import (
	"iter"
	"slices"
	"strings"

	"github.com/MacroPower/fspath/pkg/paths"
)

// Keys returns a sequence of the absolute paths of all values stored at or
// below root.
//
// Entries are visited depth first: the value at a path comes before the
// values below it, and sibling subtrees are visited in ascending order of
// their names. Each range over the sequence performs a fresh traversal. A
// root that is not in the map yields an empty sequence.
func (m *PathMap[V]) Keys(root string) (iter.Seq[string], error) {
	comps, err := paths.Components(root)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		m.walk(comps, func(key string, _ *node[V]) bool {
			return yield(key)
		})
	}, nil
}

// Values returns a sequence of all values stored at or below root, in the
// same order as [PathMap.Keys].
func (m *PathMap[V]) Values(root string) (iter.Seq[V], error) {
	comps, err := paths.Components(root)
	if err != nil {
		return nil, err
	}

	return func(yield func(V) bool) {
		m.walk(comps, func(_ string, n *node[V]) bool {
			return yield(n.value)
		})
	}, nil
}

// Items returns a sequence of all (path, value) pairs stored at or below
// root, in the same order as [PathMap.Keys].
func (m *PathMap[V]) Items(root string) (iter.Seq2[string, V], error) {
	comps, err := paths.Components(root)
	if err != nil {
		return nil, err
	}

	return func(yield func(string, V) bool) {
		m.walk(comps, func(key string, n *node[V]) bool {
			return yield(key, n.value)
		})
	}, nil
}

// Names returns a sequence of the names of the immediate children of root
// that hold a value or have descendants, in ascending order. It is the
// equivalent of listing a directory.
func (m *PathMap[V]) Names(root string) (iter.Seq[string], error) {
	comps, err := paths.Components(root)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		n := m.lookup(comps)
		if n == nil {
			return
		}

		m.iterating.Add(1)
		defer m.iterating.Add(-1)

		for _, name := range n.names() {
			if n.children[name].isEmpty() {
				continue
			}

			if !yield(name) {
				return
			}
		}
	}, nil
}

// walk calls fn for every node holding a value at or below the node
// addressed by comps, stopping early if fn returns false. The map is marked
// as being iterated until walk returns.
func (m *PathMap[V]) walk(comps []string, fn func(key string, n *node[V]) bool) {
	start := m.lookup(comps)
	if start == nil {
		return
	}

	m.iterating.Add(1)
	defer m.iterating.Add(-1)

	type pending struct {
		n   *node[V]
		key string
	}

	stack := []pending{{key: paths.Root + strings.Join(comps, paths.Separator), n: start}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.n.hasValue && !fn(cur.key, cur.n) {
			return
		}

		// Push in reverse so the smallest name is popped first.
		for _, name := range slices.Backward(cur.n.names()) {
			stack = append(stack, pending{key: childKey(cur.key, name), n: cur.n.children[name]})
		}
	}
}

func childKey(parent, name string) string {
	if parent == paths.Root {
		return paths.Root + name
	}

	return parent + paths.Separator + name
}
