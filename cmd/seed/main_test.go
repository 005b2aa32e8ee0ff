package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogFallsBackToBundledFile(t *testing.T) {
	file, err := loadCatalog("")
	require.NoError(t, err)
	assert.NotEmpty(t, file.Items)
}

func TestLoadCatalogReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := []byte(`items:
  - name: Street Triple
    brand: Triumph
    category: Naked
    price: "10995.00"
    stock: 2
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	file, err := loadCatalog(path)
	require.NoError(t, err)
	require.Len(t, file.Items, 1)
	assert.Equal(t, "Street Triple", file.Items[0].Name)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := loadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--admin-email", "boss@riders.example", "--sample-user=false"}))

	email, err := cmd.Flags().GetString("admin-email")
	require.NoError(t, err)
	assert.Equal(t, "boss@riders.example", email)

	sample, err := cmd.Flags().GetBool("sample-user")
	require.NoError(t, err)
	assert.False(t, sample)
}
