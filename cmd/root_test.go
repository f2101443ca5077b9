package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"match", "rank", "enrich", "import", "status", "serve", "cache"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "crm-ops", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestEnrichCommand_Flags(t *testing.T) {
	for _, name := range []string{"source", "limit", "owner", "checkpoint"} {
		require.NotNil(t, enrichCmd.Flags().Lookup(name), "enrich should have --%s", name)
	}
	assert.Equal(t, "dataset", enrichCmd.Flags().Lookup("source").DefValue)
}

func TestRankCommand_Flags(t *testing.T) {
	flag := rankCmd.Flags().Lookup("scope")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestImportCommand_Flags(t *testing.T) {
	for _, name := range []string{"csv", "xlsx", "sheet"} {
		require.NotNil(t, importCmd.Flags().Lookup(name), "import should have --%s", name)
	}
}
