package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.SaveStream("dnr/req-1/doc.pdf", bytes.NewReader([]byte("%PDF-1.4 test")), 1024)
	require.NoError(t, err)
	assert.EqualValues(t, 13, n)

	f, err := store.Open("dnr/req-1/doc.pdf")
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(body))
}

func TestLocalStorageRejectsOversized(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.SaveStream("big.pdf", bytes.NewReader(make([]byte, 11)), 10)
	require.ErrorIs(t, err, ErrTooLarge)
	_, statErr := os.Stat(filepath.Join(dir, "big.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalStorageKeepsPathsInside(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.SaveStream("../../escape.pdf", bytes.NewReader([]byte("x")), 10)
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "escape.pdf"))
	assert.NoError(t, statErr)
}

func TestLocalStorageCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.SaveStream("dnr/old.pdf", bytes.NewReader([]byte("x")), 10)
	require.NoError(t, err)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "dnr", "old.pdf"), old, old))
	_, err = store.SaveStream("dnr/new.pdf", bytes.NewReader([]byte("x")), 10)
	require.NoError(t, err)

	_, err = store.SaveStream("dnr/attached.pdf", bytes.NewReader([]byte("x")), 10)
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "dnr", "attached.pdf"), old, old))

	deleted, err := store.CleanupOlderThan("dnr", 24*time.Hour, func(rel string) (bool, error) {
		return rel == "dnr/attached.pdf", nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dnr/old.pdf"}, deleted)
	_, err = os.Stat(filepath.Join(dir, "dnr", "attached.pdf"))
	assert.NoError(t, err)
}
