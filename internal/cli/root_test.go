package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := GetRootCmd()

	assert.Equal(t, "hr-assistant", root.Use)
	assert.Equal(t, version, root.Version)

	t.Run("global flags registered", func(t *testing.T) {
		assert.NotNil(t, root.PersistentFlags().Lookup("config"))
		assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
	})

	t.Run("subcommands registered", func(t *testing.T) {
		names := map[string]bool{}
		for _, cmd := range root.Commands() {
			names[cmd.Name()] = true
		}
		for _, want := range []string{"serve", "index", "ask"} {
			assert.True(t, names[want], "missing subcommand %s", want)
		}
	})
}

func TestGetVersion(t *testing.T) {
	require.NotEmpty(t, GetVersion())
}
