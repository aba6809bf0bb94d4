package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	for name, want := range commandNames {
		got, ok := ParseCommand(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseCommand("unknown_command")
	assert.False(t, ok)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "borrow", CmdBorrow.String())
	assert.Equal(t, "unknown", CmdUnknown.String())
}

func TestDefinitionsMatchDispatch(t *testing.T) {
	// Every registered slash command must parse to a dispatchable
	// Command, or the gateway would accept interactions we drop.
	for _, def := range Definitions() {
		cmd, ok := ParseCommand(def.Name)
		assert.True(t, ok, def.Name)
		assert.NotEqual(t, CmdUnknown, cmd, def.Name)
	}
}
