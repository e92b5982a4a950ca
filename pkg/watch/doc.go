// Package watch keeps an index of path watch registrations.
//
// A [Registry] answers the question "which watches should be notified about
// a change to this path?" Watches are registered on a path and are either
// exact, matching only that path, or recursive, matching the path and
// everything below it. The index is a [pathmap.PathMap] keyed by the watched
// path, so lookups cost one walk from the root to the changed path.
package watch
