package trie

import (
	"testing"

	"github.com/dchest/uniuri"
	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/kv"
	"github.com/stretchr/testify/require"
)

func mustInsert(t *testing.T, tree *Node[string], m method.Method, pattern string) {
	require.NoError(t, tree.Insert(pattern, m, m.String()+" "+pattern))
}

func find(tree *Node[string], m method.Method, path string) (string, bool, *kv.Storage) {
	params := kv.New()
	value, found := tree.Find(path, m, params)

	return value, found, params
}

func TestTrie(t *testing.T) {
	tree := New[string]()
	mustInsert(t, tree, method.GET, "/")
	mustInsert(t, tree, method.GET, "/users")
	mustInsert(t, tree, method.GET, "/users/new")
	mustInsert(t, tree, method.GET, "/users/{id}")
	mustInsert(t, tree, method.DELETE, "/users/{id}")
	mustInsert(t, tree, method.GET, "/users/{id}/posts/{post}")
	mustInsert(t, tree, method.GET, "/users/new/settings")
	mustInsert(t, tree, method.GET, "/files/{name}/raw")
	mustInsert(t, tree, method.POST, "/users/new")

	t.Run("root", func(t *testing.T) {
		value, found, params := find(tree, method.GET, "/")
		require.True(t, found)
		require.Equal(t, "GET /", value)
		require.True(t, params.Empty())
	})

	t.Run("static", func(t *testing.T) {
		value, found, params := find(tree, method.GET, "/users/new")
		require.True(t, found)
		require.Equal(t, "GET /users/new", value)
		require.True(t, params.Empty())
	})

	t.Run("dynamic", func(t *testing.T) {
		value, found, params := find(tree, method.GET, "/users/42")
		require.True(t, found)
		require.Equal(t, "GET /users/{id}", value)
		require.Equal(t, "42", params.Value("id"))
		require.Equal(t, 1, params.Len())
	})

	t.Run("multiple params", func(t *testing.T) {
		value, found, params := find(tree, method.GET, "/users/42/posts/hello")
		require.True(t, found)
		require.Equal(t, "GET /users/{id}/posts/{post}", value)
		require.Equal(t, "42", params.Value("id"))
		require.Equal(t, "hello", params.Value("post"))
	})

	t.Run("backtracking", func(t *testing.T) {
		// "new" matches the static branch first, which has no posts child
		value, found, params := find(tree, method.GET, "/users/new/posts/1")
		require.True(t, found)
		require.Equal(t, "GET /users/{id}/posts/{post}", value)
		require.Equal(t, "new", params.Value("id"))
		require.Equal(t, "1", params.Value("post"))
	})

	t.Run("backtracking by method", func(t *testing.T) {
		value, found, params := find(tree, method.DELETE, "/users/new")
		require.True(t, found)
		require.Equal(t, "DELETE /users/{id}", value)
		require.Equal(t, "new", params.Value("id"))
	})

	t.Run("abandoned bindings are removed", func(t *testing.T) {
		_, found, params := find(tree, method.GET, "/files/a/cooked")
		require.False(t, found)
		require.True(t, params.Empty())
	})

	t.Run("extra segment", func(t *testing.T) {
		_, found, params := find(tree, method.GET, "/users/42/extra")
		require.False(t, found)
		require.True(t, params.Empty())
	})

	t.Run("empty segments are skipped", func(t *testing.T) {
		for _, path := range []string{"/users/42/", "/users//42", "//users/42//"} {
			value, found, params := find(tree, method.GET, path)
			require.True(t, found, path)
			require.Equal(t, "GET /users/{id}", value, path)
			require.Equal(t, "42", params.Value("id"), path)
			require.Equal(t, 1, params.Len(), path)
		}

		value, found, _ := find(tree, method.GET, "//")
		require.True(t, found)
		require.Equal(t, "GET /", value)
	})

	t.Run("empty segment doesn't bind", func(t *testing.T) {
		_, found, params := find(tree, method.GET, "/files//raw")
		require.False(t, found)
		require.True(t, params.Empty())
	})

	t.Run("method mismatch", func(t *testing.T) {
		_, found, _ := find(tree, method.PUT, "/users")
		require.False(t, found)
	})

	t.Run("allowed", func(t *testing.T) {
		require.Equal(t, []method.Method{method.GET, method.DELETE}, tree.Allowed("/users/42"))
		require.Equal(t, []method.Method{method.GET, method.POST}, tree.Allowed("/users/new"))
		require.Empty(t, tree.Allowed("/nowhere"))
	})

	t.Run("random segments", func(t *testing.T) {
		for range 10 {
			id := uniuri.New()
			_, found, params := find(tree, method.GET, "/users/"+id)
			require.True(t, found)
			require.Equal(t, id, params.Value("id"))
		}
	})

	t.Run("path without leading slash", func(t *testing.T) {
		_, found, _ := find(tree, method.GET, "users")
		require.False(t, found)
	})
}

func TestInsert(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		tree := New[string]()
		require.NoError(t, tree.Insert("/a", method.GET, "first"))
		require.NoError(t, tree.Insert("/a", method.GET, "second"))
		value, found, _ := find(tree, method.GET, "/a")
		require.True(t, found)
		require.Equal(t, "second", value)
	})

	t.Run("conflicting params", func(t *testing.T) {
		tree := New[string]()
		require.NoError(t, tree.Insert("/users/{id}", method.GET, ""))
		require.NoError(t, tree.Insert("/users/{id}/posts", method.GET, ""))
		require.ErrorIs(t, tree.Insert("/users/{name}", method.POST, ""), ErrConflictingParams)
	})

	t.Run("bad patterns", func(t *testing.T) {
		tree := New[string]()
		require.ErrorIs(t, tree.Insert("users", method.GET, ""), ErrNoLeadingSlash)
		require.ErrorIs(t, tree.Insert("", method.GET, ""), ErrNoLeadingSlash)
		require.ErrorIs(t, tree.Insert("/users/{}", method.GET, ""), ErrEmptyParam)
		require.ErrorIs(t, tree.Insert("/", method.Unknown, ""), ErrUnknownMethod)
	})

	t.Run("trailing and repeated slashes in patterns", func(t *testing.T) {
		tree := New[string]()
		require.NoError(t, tree.Insert("/users/", method.GET, "users"))
		require.NoError(t, tree.Insert("/api//items", method.GET, "items"))

		for path, expected := range map[string]string{
			"/users":      "users",
			"/users/":     "users",
			"/api/items":  "items",
			"/api//items": "items",
		} {
			value, found, _ := find(tree, method.GET, path)
			require.True(t, found, path)
			require.Equal(t, expected, value, path)
		}
	})

	t.Run("root", func(t *testing.T) {
		tree := New[string]()
		require.NoError(t, tree.Insert("/", method.GET, "root"))
		_, found, _ := find(tree, method.GET, "/a")
		require.False(t, found)
		value, found, _ := find(tree, method.GET, "/")
		require.True(t, found)
		require.Equal(t, "root", value)
	})

	t.Run("braces inside a segment are static", func(t *testing.T) {
		tree := New[string]()
		require.NoError(t, tree.Insert("/a{b", method.GET, "static"))
		value, found, _ := find(tree, method.GET, "/a{b")
		require.True(t, found)
		require.Equal(t, "static", value)
	})
}
