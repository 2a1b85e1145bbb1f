package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"dialogue-orchestrator/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "orchestrator-test"},
		Store:   config.StoreConfig{Driver: config.StoreDriverMemory},
		Logging: config.LoggingConfig{Level: "error", Format: "console"},
	}
}

func TestBuildApp_MemoryStore(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(), "stderr")
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.dialogue)
	assert.Contains(t, a.ready, "store")
	assert.NoError(t, a.ready["store"].Ping(context.Background()))
}

func TestREPL(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(), "stderr")
	require.NoError(t, err)
	defer a.Close()

	in := strings.NewReader("show my cart\n\nexit\nshow my cart\n")
	var out bytes.Buffer
	require.NoError(t, a.repl(context.Background(), "u-1", in, &out))

	assert.Contains(t, out.String(), "Your cart is empty.")
	// Nothing after exit is read.
	assert.Equal(t, 1, strings.Count(out.String(), "Your cart is empty."))
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "chat"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("store"))
}
