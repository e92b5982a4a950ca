// Package pathmap provides a dictionary keyed by virtual filesystem paths.
//
// A [PathMap] is a trie indexed by path component. Lookups, insertions and
// deletions cost O(number of path components), and operations can be scoped
// to a subtree: listing the immediate children of a path, enumerating all
// entries below it, or clearing it.
//
//	m := pathmap.New[int]()
//	_ = m.Set("/foo/bar", 1)
//	_ = m.Set("/foo/baz/qux", 2)
//
//	names, _ := m.Names("/foo") // "bar", "baz"
//	keys, _ := m.Keys("/foo")   // "/foo/bar", "/foo/baz/qux"
//
// Paths are normalized with [paths.Normalize] before use, so "foo/bar",
// "/foo//bar/" and `\foo\bar` all address the same entry.
//
// A [PathMap] is not safe for concurrent use. [Sharded] wraps one map per
// top-level path component behind per-shard locks for callers that need
// concurrent access.
package pathmap
