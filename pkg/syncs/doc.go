// Package syncs provides synchronization primitives and utilities.
//
// The main type is [KeyLock], a set of reader/writer locks addressed by
// string keys. It is used to serialize access to independent parts of a
// shared structure, e.g. the subtrees below each top-level path component.
package syncs
