package fit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	c := NewCatalog(
		map[string][]string{
			"k1": {"Hi {1}! I am testing {2}", "Hi {1}!", "Hi!"},
		},
		map[string][]string{
			"k2": {"Settings for {1}", "Settings"},
		},
	)

	require.Equal(t, []string{"Hi Ada! I am testing fit", "Hi Ada!", "Hi!"}, c.Texts("k1", "Ada", "fit"))
	require.Equal(t, "Hi Ada!", c.FitText("k1", Constraints{Width: 10}, "Ada", "fit"))
	require.Equal(t, "Settings", c.FitTitle("k2", Constraints{Width: 10}, "a long account name"))
	require.Nil(t, c.Texts("missing"))
	require.Equal(t, "", c.FitText("missing", Constraints{Width: 10}))
	require.Equal(t, []string{"k1", "k2"}, c.Keys())
}

func TestNewCatalog_PanicsOnInvalidTemplate(t *testing.T) {
	require.Panics(t, func() {
		NewCatalog(map[string][]string{"k": {"{0}"}}, nil)
	})
}
