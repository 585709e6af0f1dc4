package strutil

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
)

type strpair struct {
	K, V string
}

func collect(i iter.Seq2[string, string]) (pairs []strpair) {
	for k, v := range i {
		pairs = append(pairs, strpair{k, v})
	}

	return pairs
}

func TestWalkParams(t *testing.T) {
	t.Run("content disposition", func(t *testing.T) {
		pairs := collect(WalkParams(CutParams(`form-data; name="upload"; filename="x.txt"`)))
		require.Equal(t, []strpair{{"name", "upload"}, {"filename", "x.txt"}}, pairs)
	})

	t.Run("quoted semicolon", func(t *testing.T) {
		pairs := collect(WalkParams(`filename="a;b.txt"; name=file`))
		require.Equal(t, []strpair{{"filename", "a;b.txt"}, {"name", "file"}}, pairs)
	})

	t.Run("trailing separators", func(t *testing.T) {
		pairs := collect(WalkParams("charset=utf-8;;  ;"))
		require.Equal(t, []strpair{{"charset", "utf-8"}}, pairs)
	})

	t.Run("malformed key", func(t *testing.T) {
		pairs := collect(WalkParams("a=1; b c=2; d=3"))
		require.Equal(t, []strpair{{"a", "1"}}, pairs)
	})

	t.Run("lookup", func(t *testing.T) {
		boundary, found := Param(CutParams("multipart/form-data; Boundary=----abc"), "boundary")
		require.True(t, found)
		require.Equal(t, "----abc", boundary)

		_, found = Param("", "boundary")
		require.False(t, found)
	})
}

func TestContainsToken(t *testing.T) {
	require.True(t, ContainsToken("gzip, deflate, br", "deflate"))
	require.True(t, ContainsToken("br;q=1.0, GZIP;q=0.5", "gzip"))
	require.False(t, ContainsToken("gzipped", "gzip"))
	require.False(t, ContainsToken("", "gzip"))
}

func TestStrip(t *testing.T) {
	require.Equal(t, "value", StripWS(" \tvalue \t"))
	require.Empty(t, StripWS("   "))
	require.Equal(t, "text/plain", Unquote(`"text/plain"`))
	require.Equal(t, `"`, Unquote(`"`))
}
