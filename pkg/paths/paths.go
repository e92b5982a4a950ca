package paths

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// Separator is the canonical path separator.
	Separator = "/"

	// Root is the canonical form of the root path.
	Root = "/"
)

var (
	// ErrInvalidPath indicates a path could not be normalized, e.g. because it
	// contains more ".." components than it has parents to resolve them against.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotAPrefix indicates a path was expected to be a prefix of another
	// path, but was not.
	ErrNotAPrefix = errors.New("not a prefix")
)

// Normalize converts path to the canonical form.
//
// Backslashes are replaced with forward slashes, empty and "." components are
// dropped, and each ".." removes the component before it. A ".." with nothing
// left to remove results in an [ErrInvalidPath] error. A leading slash (or
// backslash) is preserved as a single "/". The empty string is returned
// unchanged.
//
//	Normalize(`foo\bar\baz`)             // "foo/bar/baz"
//	Normalize("/foo//bar/frob/../baz")   // "/foo/bar/baz"
//	Normalize("foo/../../bar")           // ErrInvalidPath
func Normalize(path string) (string, error) {
	if path == "" || isCanonical(path) {
		return path, nil
	}

	components := make([]string, 0, strings.Count(path, Separator)+1)

	for comp := range strings.SplitSeq(strings.ReplaceAll(path, `\`, Separator), Separator) {
		switch comp {
		case "", ".":
		case "..":
			if len(components) == 0 {
				return "", fmt.Errorf("%w: too many backrefs in path '%s'", ErrInvalidPath, path)
			}

			components = components[:len(components)-1]
		default:
			components = append(components, comp)
		}
	}

	if isSeparator(path[0]) {
		return Root + strings.Join(components, Separator), nil
	}

	return strings.Join(components, Separator), nil
}

// MustNormalize is like [Normalize] but panics if the path cannot be
// normalized. It is intended for paths known at compile time.
func MustNormalize(path string) string {
	p, err := Normalize(path)
	if err != nil {
		panic(err)
	}

	return p
}

// Components returns the individual components of the normalized path. Any
// leading slash is ignored, so "/a/b" and "a/b" both yield ["a", "b"]. The
// root and the empty path have no components.
func Components(path string) ([]string, error) {
	return SplitComponents(path, -1)
}

// SplitComponents is like [Components], but performs at most maxSplits
// splits. The unsplit remainder of the path is kept as the final element,
// e.g. SplitComponents("a/b/c/d", 1) returns ["a", "b/c/d"]. A negative
// maxSplits means no limit.
func SplitComponents(path string, maxSplits int) ([]string, error) {
	p, err := Normalize(path)
	if err != nil {
		return nil, err
	}

	p = Rel(p)
	if p == "" {
		return nil, nil
	}

	if maxSplits < 0 {
		return strings.Split(p, Separator), nil
	}

	return strings.SplitN(p, Separator, maxSplits+1), nil
}

// Ancestors returns the absolute paths leading from the root to path,
// inclusive of both. If innermostFirst is set, the order is reversed so the
// path itself comes first and the root last.
//
//	Ancestors("a/b/c", false) // ["/", "/a", "/a/b", "/a/b/c"]
func Ancestors(path string, innermostFirst bool) ([]string, error) {
	comps, err := Components(path)
	if err != nil {
		return nil, err
	}

	ancestors := make([]string, 0, len(comps)+1)
	ancestors = append(ancestors, Root)

	var b strings.Builder
	for _, c := range comps {
		b.WriteString(Separator)
		b.WriteString(c)
		ancestors = append(ancestors, b.String())
	}

	if innermostFirst {
		slices.Reverse(ancestors)
	}

	return ancestors, nil
}

// IsAbs reports whether path starts with a slash.
func IsAbs(path string) bool {
	return strings.HasPrefix(path, Separator)
}

// Abs converts path to an absolute path by adding a leading slash if it does
// not have one already. There is no concept of a working directory, so the
// empty path becomes the root.
func Abs(path string) string {
	if path == "" {
		return Root
	}

	if !IsAbs(path) {
		return Root + path
	}

	return path
}

// Rel converts path to a relative path by removing all leading slashes. It is
// the inverse of [Abs].
func Rel(path string) string {
	return strings.TrimLeft(path, Separator)
}

// Join joins any number of paths into a single normalized path.
//
// Empty arguments are ignored. An argument starting with a slash discards
// everything before it, and makes the result absolute.
//
//	Join("foo", "bar", "baz")  // "foo/bar/baz"
//	Join("foo/bar", "../baz")  // "foo/baz"
//	Join("foo/bar", "/baz")    // "/baz"
func Join(paths ...string) (string, error) {
	absolute := false
	parts := make([]string, 0, len(paths))

	for _, p := range paths {
		if p == "" {
			continue
		}

		if isSeparator(p[0]) {
			parts = parts[:0]
			absolute = true
		}

		parts = append(parts, p)
	}

	path, err := Normalize(strings.Join(parts, Separator))
	if err != nil {
		return "", err
	}

	if absolute && !IsAbs(path) {
		path = Root + path
	}

	return path, nil
}

// Split normalizes path and splits it immediately following the final slash,
// returning the preceding components (head) and the final component (tail).
// If there is no slash, head is empty and tail is the whole path.
//
//	Split("foo/bar/baz") // "foo/bar", "baz"
//	Split("/foo")        // "", "foo"
func Split(path string) (string, string, error) {
	p, err := Normalize(path)
	if err != nil {
		return "", "", err
	}

	i := strings.LastIndex(p, Separator)
	if i < 0 {
		return "", p, nil
	}

	return p[:i], p[i+1:], nil
}

// Dir returns the head returned by [Split].
func Dir(path string) (string, error) {
	head, _, err := Split(path)

	return head, err
}

// Base returns the tail returned by [Split].
func Base(path string) (string, error) {
	_, tail, err := Split(path)

	return tail, err
}

// IsSameParent reports whether both paths refer to entries of the same
// directory.
func IsSameParent(path1, path2 string) (bool, error) {
	head1, err := Dir(path1)
	if err != nil {
		return false, err
	}

	head2, err := Dir(path2)
	if err != nil {
		return false, err
	}

	return head1 == head2, nil
}

// IsPrefix reports whether path1 is a component-wise prefix of path2.
//
// The comparison is made on the paths as given, without normalization.
// Trailing slashes on path1 are ignored, trailing slashes on path2 are not.
//
//	IsPrefix("foo/bar", "foo/bar/spam.txt") // true
//	IsPrefix("foo/bar/", "foo/bar")         // true
//	IsPrefix("foo/barry", "foo/baz/bar")    // false
func IsPrefix(path1, path2 string) bool {
	bits1 := strings.Split(path1, Separator)
	bits2 := strings.Split(path2, Separator)

	for len(bits1) > 0 && bits1[len(bits1)-1] == "" {
		bits1 = bits1[:len(bits1)-1]
	}

	if len(bits1) > len(bits2) {
		return false
	}

	for i, bit := range bits1 {
		if bit != bits2[i] {
			return false
		}
	}

	return true
}

// ForceDir returns path with a trailing slash, adding one if needed.
func ForceDir(path string) string {
	if !strings.HasSuffix(path, Separator) {
		return path + Separator
	}

	return path
}

// StripPrefix returns the part of path following prefix. It returns an
// [ErrNotAPrefix] error if prefix is not a prefix of path according to
// [IsPrefix].
//
//	StripPrefix("foo/bar", "foo/bar/spam.txt")  // "/spam.txt"
//	StripPrefix("foo/bar/", "foo/bar/spam.txt") // "spam.txt"
func StripPrefix(prefix, path string) (string, error) {
	if !IsPrefix(prefix, path) {
		return "", fmt.Errorf("%w: '%s' of '%s'", ErrNotAPrefix, prefix, path)
	}

	if len(prefix) >= len(path) {
		return "", nil
	}

	return path[len(prefix):], nil
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

// isCanonical reports whether path is already in canonical form, in which
// case normalizing it would return it unchanged.
func isCanonical(path string) bool {
	if path == Root {
		return true
	}

	start := 0
	if path[0] == '/' {
		start = 1
	}

	seg := start
	for i := start; i <= len(path); i++ {
		if i < len(path) && path[i] != '/' {
			if path[i] == '\\' {
				return false
			}

			continue
		}

		switch path[seg:i] {
		case "", ".", "..":
			return false
		}

		seg = i + 1
	}

	return true
}
