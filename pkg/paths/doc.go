// Package paths provides utilities for working with virtual filesystem paths.
//
// All paths handled here use a single canonical form: forward-slash
// separated, with no empty, "." or ".." components, and an optional leading
// slash marking the path as absolute. The root is always "/". Backslashes
// are accepted on input and converted to forward slashes.
//
// Functions in this package never touch a real filesystem; they only
// manipulate strings.
package paths
