package pathmap

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/MacroPower/fspath/pkg/paths"
)

var (
	// ErrKeyNotFound indicates no value is stored under the requested path.
	ErrKeyNotFound = errors.New("key not found")

	// ErrIterating indicates a mutation was attempted while the map was being
	// iterated.
	ErrIterating = errors.New("path map is being iterated")
)

// PathMap is a trie-backed map from canonical paths to values of type V.
//
// The zero value is an empty map ready to use. A PathMap must not be copied
// after first use.
//
// While any sequence returned by [PathMap.Keys], [PathMap.Values],
// [PathMap.Items], [PathMap.Names] or [PathMap.Match] is being ranged over,
// all mutating methods fail with [ErrIterating] and leave the map unchanged.
type PathMap[V any] struct {
	root node[V]

	// Number of stored values.
	len int

	// Number of live traversals. Atomic so that concurrent readers may
	// range over the map.
	iterating atomic.Int32
}

// node is one level of the trie. The value slot is kept separate from the
// children so that no component name can be mistaken for it.
type node[V any] struct {
	children map[string]*node[V]
	value    V
	hasValue bool
}

// New returns an empty [PathMap].
func New[V any]() *PathMap[V] {
	return &PathMap[V]{}
}

// Get returns the value stored under path. If there is none, it returns an
// error wrapping [ErrKeyNotFound] that names the requested path.
func (m *PathMap[V]) Get(path string) (V, error) {
	var zero V

	comps, err := paths.Components(path)
	if err != nil {
		return zero, err
	}

	n := m.lookup(comps)
	if n == nil || !n.hasValue {
		return zero, keyNotFound(path)
	}

	return n.value, nil
}

// Contains reports whether a value is stored under path. Invalid paths are
// never contained.
func (m *PathMap[V]) Contains(path string) bool {
	_, err := m.Get(path)

	return err == nil
}

// GetOrDefault returns the value stored under path, or def if there is none.
// An error is only returned if path is invalid.
func (m *PathMap[V]) GetOrDefault(path string, def V) (V, error) {
	v, err := m.Get(path)
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}

	return v, err
}

// Set stores v under path, replacing any existing value.
func (m *PathMap[V]) Set(path string, v V) error {
	comps, err := paths.Components(path)
	if err != nil {
		return err
	}

	if err := m.checkWritable(); err != nil {
		return err
	}

	n := m.create(comps)
	if !n.hasValue {
		m.len++
	}

	n.value = v
	n.hasValue = true

	return nil
}

// SetDefault stores v under path if no value is stored there yet. It returns
// the value stored under path after the call.
func (m *PathMap[V]) SetDefault(path string, v V) (V, error) {
	var zero V

	comps, err := paths.Components(path)
	if err != nil {
		return zero, err
	}

	if err := m.checkWritable(); err != nil {
		return zero, err
	}

	n := m.create(comps)
	if !n.hasValue {
		n.value = v
		n.hasValue = true
		m.len++
	}

	return n.value, nil
}

// Delete removes the value stored under path. Nodes left without a value or
// children are removed, all the way up to (but excluding) the root. If there
// is no value under path, an error wrapping [ErrKeyNotFound] is returned and
// the map is unchanged.
func (m *PathMap[V]) Delete(path string) error {
	comps, err := paths.Components(path)
	if err != nil {
		return err
	}

	if err := m.checkWritable(); err != nil {
		return err
	}

	if _, ok := m.remove(comps); !ok {
		return keyNotFound(path)
	}

	return nil
}

// Pop removes and returns the value stored under path, or returns def if there
// is none. An error is only returned if path is invalid or the map is being
// iterated.
func (m *PathMap[V]) Pop(path string, def V) (V, error) {
	comps, err := paths.Components(path)
	if err != nil {
		return def, err
	}

	if err := m.checkWritable(); err != nil {
		return def, err
	}

	v, ok := m.remove(comps)
	if !ok {
		return def, nil
	}

	return v, nil
}

// Clear removes all values stored under root, including the value at root
// itself. The node for root is kept, so clearing never removes the entries of
// parent paths. Clearing a path that is not in the map is a no-op.
func (m *PathMap[V]) Clear(root string) error {
	comps, err := paths.Components(root)
	if err != nil {
		return err
	}

	if err := m.checkWritable(); err != nil {
		return err
	}

	n := m.lookup(comps)
	if n == nil {
		return nil
	}

	m.len -= n.count()
	n.children = nil
	n.clearValue()

	return nil
}

// Len returns the number of values stored in the map.
func (m *PathMap[V]) Len() int {
	return m.len
}

// IsEmpty reports whether the map holds no values.
func (m *PathMap[V]) IsEmpty() bool {
	return m.len == 0
}

func (m *PathMap[V]) checkWritable() error {
	if m.iterating.Load() > 0 {
		return ErrIterating
	}

	return nil
}

// lookup returns the node addressed by comps, or nil if it does not exist.
func (m *PathMap[V]) lookup(comps []string) *node[V] {
	n := &m.root
	for _, name := range comps {
		n = n.children[name]
		if n == nil {
			return nil
		}
	}

	return n
}

// create returns the node addressed by comps, creating missing nodes on the
// way.
func (m *PathMap[V]) create(comps []string) *node[V] {
	n := &m.root
	for _, name := range comps {
		child := n.children[name]
		if child == nil {
			if n.children == nil {
				n.children = make(map[string]*node[V])
			}

			child = &node[V]{}
			n.children[name] = child
		}

		n = child
	}

	return n
}

// remove clears the value addressed by comps and prunes empty nodes. It
// reports false, without modifying the trie, if there is no such value.
func (m *PathMap[V]) remove(comps []string) (V, bool) {
	var zero V

	// Each frame records how the next node was reached, so the walk can be
	// unwound without back-references from children to parents.
	type frame struct {
		parent *node[V]
		name   string
	}

	stack := make([]frame, 0, len(comps))

	n := &m.root
	for _, name := range comps {
		child := n.children[name]
		if child == nil {
			return zero, false
		}

		stack = append(stack, frame{parent: n, name: name})
		n = child
	}

	if !n.hasValue {
		return zero, false
	}

	v := n.value
	n.clearValue()
	m.len--

	for i := len(stack) - 1; i >= 0 && n.isEmpty(); i-- {
		f := stack[i]
		delete(f.parent.children, f.name)
		n = f.parent
	}

	return v, true
}

func (n *node[V]) isEmpty() bool {
	return !n.hasValue && len(n.children) == 0
}

func (n *node[V]) clearValue() {
	var zero V

	n.value = zero
	n.hasValue = false
}

// names returns the names of the node's children in ascending order.
func (n *node[V]) names() []string {
	return slices.Sorted(maps.Keys(n.children))
}

// count returns the number of values stored at or below the node.
func (n *node[V]) count() int {
	total := 0

	stack := []*node[V]{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.hasValue {
			total++
		}

		for _, child := range cur.children {
			stack = append(stack, child)
		}
	}

	return total
}

func keyNotFound(path string) error {
	return fmt.Errorf("%w: %s", ErrKeyNotFound, path)
}
