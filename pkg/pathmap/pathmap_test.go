package pathmap_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/fspath/pkg/pathmap"
	"github.com/MacroPower/fspath/pkg/paths"
)

func newMap(t *testing.T, keys ...string) *pathmap.PathMap[string] {
	t.Helper()

	m := pathmap.New[string]()
	for _, k := range keys {
		require.NoError(t, m.Set(k, k))
	}

	return m
}

func keys[V any](t *testing.T, m *pathmap.PathMap[V], root string) []string {
	t.Helper()

	seq, err := m.Keys(root)
	require.NoError(t, err)

	return slices.Collect(seq)
}

func names[V any](t *testing.T, m *pathmap.PathMap[V], root string) []string {
	t.Helper()

	seq, err := m.Names(root)
	require.NoError(t, err)

	return slices.Collect(seq)
}

func TestPathMap_SetGet(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		set string
		get string
	}{
		"absolute":          {set: "/a/b/c", get: "/a/b/c"},
		"relative set":      {set: "a/b", get: "/a/b"},
		"relative get":      {set: "/a/b", get: "a/b"},
		"backslashes":       {set: `\a\b`, get: "/a/b"},
		"messy":             {set: "/a//./b/../c/", get: "/a/c"},
		"root":              {set: "/", get: "/"},
		"empty is root":     {set: "", get: "/"},
		"dotted components": {set: "/a/.hidden", get: "a/.hidden"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := pathmap.New[int]()
			require.NoError(t, m.Set(tc.set, 42))

			got, err := m.Get(tc.get)
			require.NoError(t, err)
			assert.Equal(t, 42, got)
			assert.True(t, m.Contains(tc.get))
			assert.Equal(t, 1, m.Len())
		})
	}
}

func TestPathMap_SetOverwrites(t *testing.T) {
	t.Parallel()

	m := pathmap.New[int]()
	require.NoError(t, m.Set("/a", 1))
	require.NoError(t, m.Set("/a/", 2))

	got, err := m.Get("/a")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, m.Len())
}

func TestPathMap_ZeroValue(t *testing.T) {
	t.Parallel()

	var m pathmap.PathMap[int]

	assert.True(t, m.IsEmpty())
	require.NoError(t, m.Set("/a", 1))
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Contains("/a"))
}

func TestPathMap_GetMissing(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a/b/c")

	tcs := map[string]string{
		"missing intermediate": "/x/y",
		"missing leaf":         "/a/b/c/d",
		"no value on node":     "/a/b",
		"root without value":   "/",
	}

	for name, path := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := m.Get(path)
			require.ErrorIs(t, err, pathmap.ErrKeyNotFound)
			assert.Contains(t, err.Error(), path)
			assert.False(t, m.Contains(path))
		})
	}
}

func TestPathMap_KeyNotFoundNamesRequestedPath(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a")

	_, err := m.Get("a//b/../c")
	require.ErrorIs(t, err, pathmap.ErrKeyNotFound)
	assert.Equal(t, "key not found: a//b/../c", err.Error())
}

func TestPathMap_InvalidPath(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a")

	_, err := m.Get("/..")
	require.ErrorIs(t, err, paths.ErrInvalidPath)
	assert.False(t, m.Contains("/.."))

	_, err = m.GetOrDefault("/..", "x")
	require.ErrorIs(t, err, paths.ErrInvalidPath)

	require.ErrorIs(t, m.Set("a/../..", "x"), paths.ErrInvalidPath)
	require.ErrorIs(t, m.Delete("a/../.."), paths.ErrInvalidPath)
	require.ErrorIs(t, m.Clear("a/../.."), paths.ErrInvalidPath)

	_, err = m.Pop("a/../..", "x")
	require.ErrorIs(t, err, paths.ErrInvalidPath)

	_, err = m.SetDefault("a/../..", "x")
	require.ErrorIs(t, err, paths.ErrInvalidPath)

	_, err = m.Keys("/..")
	require.ErrorIs(t, err, paths.ErrInvalidPath)

	_, err = m.Names("/..")
	require.ErrorIs(t, err, paths.ErrInvalidPath)

	assert.Equal(t, []string{"/a"}, keys(t, m, "/"))
}

func TestPathMap_GetOrDefault(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a")

	got, err := m.GetOrDefault("/a", "default")
	require.NoError(t, err)
	assert.Equal(t, "/a", got)

	got, err = m.GetOrDefault("/b", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", got)
}

func TestPathMap_SetDefault(t *testing.T) {
	t.Parallel()

	m := pathmap.New[int]()

	got, err := m.SetDefault("/a/b", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = m.SetDefault("/a/b", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	v, err := m.Get("/a/b")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, m.Len())
}

func TestPathMap_Delete(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a/b/c")

	require.NoError(t, m.Delete("/a/b/c"))

	_, err := m.Get("/a/b/c")
	require.ErrorIs(t, err, pathmap.ErrKeyNotFound)

	err = m.Delete("/a/b/c")
	require.ErrorIs(t, err, pathmap.ErrKeyNotFound)
	assert.Contains(t, err.Error(), "/a/b/c")
	assert.True(t, m.IsEmpty())
}

func TestPathMap_DeletePrunesEmptyAncestors(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a/b/c")

	require.NoError(t, m.Delete("/a/b/c"))
	assert.Empty(t, names(t, m, "/"))
	assert.Empty(t, names(t, m, "/a"))
	assert.Empty(t, keys(t, m, "/"))

	// The root stays usable.
	require.NoError(t, m.Set("/x", "x"))
	assert.Equal(t, []string{"x"}, names(t, m, "/"))
}

func TestPathMap_DeleteKeepsAncestorsInUse(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a", "/a/b/c", "/a/b/d")

	require.NoError(t, m.Delete("/a/b/c"))
	assert.Equal(t, []string{"b"}, names(t, m, "/a"))
	assert.Equal(t, []string{"d"}, names(t, m, "/a/b"))

	require.NoError(t, m.Delete("/a/b/d"))
	assert.Empty(t, names(t, m, "/a"))
	assert.Equal(t, []string{"a"}, names(t, m, "/"))
	assert.Equal(t, []string{"/a"}, keys(t, m, "/"))

	require.NoError(t, m.Delete("/a"))
	assert.Empty(t, names(t, m, "/"))
}

func TestPathMap_DeleteNodeWithoutValue(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a/b")

	err := m.Delete("/a")
	require.ErrorIs(t, err, pathmap.ErrKeyNotFound)
	assert.Equal(t, []string{"/a/b"}, keys(t, m, "/"))
}

func TestPathMap_DeleteRoot(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/", "/a")

	require.NoError(t, m.Delete("/"))
	assert.Equal(t, []string{"/a"}, keys(t, m, "/"))
	assert.Equal(t, 1, m.Len())
}

func TestPathMap_Pop(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a/b", "/a/b/c")

	got, err := m.Pop("/a/b/c", "default")
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c", got)
	assert.Empty(t, names(t, m, "/a/b"))

	got, err = m.Pop("/a/b/c", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	got, err = m.Pop("/nope/nothing", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	got, err = m.Pop("/a", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	got, err = m.Pop("/a/b", "default")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got)
	assert.True(t, m.IsEmpty())
	assert.Empty(t, names(t, m, "/"))
}

func TestPathMap_Clear(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a", "/a/b", "/a/b/c", "/a/b/c/d", "/a/x")

	require.NoError(t, m.Clear("/a/b"))

	assert.ElementsMatch(t, []string{"/a", "/a/x"}, keys(t, m, "/"))
	assert.False(t, m.Contains("/a/b"))
	assert.False(t, m.Contains("/a/b/c"))
	assert.False(t, m.Contains("/a/b/c/d"))
	assert.True(t, m.Contains("/a/x"))
	assert.Equal(t, 2, m.Len())

	// The cleared node is left in place but is not listed.
	assert.Equal(t, []string{"x"}, names(t, m, "/a"))
}

func TestPathMap_ClearMissing(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a/b")

	require.NoError(t, m.Clear("/a/c/d"))
	assert.Equal(t, []string{"/a/b"}, keys(t, m, "/"))
}

func TestPathMap_ClearRoot(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/", "/a", "/b/c")

	require.NoError(t, m.Clear("/"))
	assert.True(t, m.IsEmpty())
	assert.Empty(t, keys(t, m, "/"))

	require.NoError(t, m.Set("/a", "again"))
	assert.Equal(t, []string{"/a"}, keys(t, m, "/"))
}

func TestPathMap_DeleteAfterClearPrunesClearedNodes(t *testing.T) {
	t.Parallel()

	m := newMap(t, "/a/b/c")

	require.NoError(t, m.Clear("/a/b"))
	require.NoError(t, m.Set("/a/b/c/d", "d"))
	require.NoError(t, m.Delete("/a/b/c/d"))

	assert.Empty(t, names(t, m, "/"))
	assert.True(t, m.IsEmpty())
}

func TestPathMap_SetThenDelete(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"/", "/a", "a/b", "/a/b/c/d/e", `x\y`} {
		m := pathmap.New[int]()
		require.NoError(t, m.Set(p, 7))

		got, err := m.Get(p)
		require.NoError(t, err)
		assert.Equal(t, 7, got)

		require.NoError(t, m.Delete(p))

		_, err = m.Get(p)
		require.ErrorIs(t, err, pathmap.ErrKeyNotFound)
		assert.True(t, m.IsEmpty())
	}
}

func BenchmarkPathMap_Get(b *testing.B) {
	m := pathmap.New[int]()
	for i, p := range []string{"/a", "/a/b", "/a/b/c", "/storage/user/documents/report.txt"} {
		if err := m.Set(p, i); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()

	for range b.N {
		_, _ = m.Get("/storage/user/documents/report.txt")
	}
}
