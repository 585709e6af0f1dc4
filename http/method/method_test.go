package method

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMethod(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, m := range List {
			require.Equal(t, m, Parse(m.String()))
		}
	})

	t.Run("unknown", func(t *testing.T) {
		for _, str := range []string{"", "get", "BREW", "PROPFIND", "GETS"} {
			require.Equal(t, Unknown, Parse(str), str)
		}

		require.Equal(t, "UNKNOWN", Method(200).String())
	})
}
