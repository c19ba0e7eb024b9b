package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	entries := "1.2.3.4\n2.3.4.5\r\n# comment\r\n\n\n\n1.1.1.0/24\r\r\r\n"
	f := filepath.Join(t.TempDir(), "test_file_"+uuid.NewString())
	err := os.WriteFile(f, []byte(entries), 0644)
	require.NoError(t, err)
	readEntries, err := ReadEntryListFromFile(f)
	assert.NoError(t, err)
	assert.Equal(t, []string{"1.2.3.4", "2.3.4.5", "1.1.1.0/24"}, readEntries)

	_, err = ReadEntryListFromFile(f + ".missing")
	assert.Error(t, err)
}

func TestWriteTempFile(t *testing.T) {
	dir := t.TempDir()
	p, err := WriteTempFile(dir, "ipset-", []byte("a\nb\n"))
	require.NoError(t, err)
	defer os.Remove(p)
	assert.True(t, strings.HasPrefix(filepath.Base(p), "ipset-"))
	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(raw))

	_, err = WriteTempFile(filepath.Join(dir, "not-exist"), "ipset-", []byte("a"))
	assert.Error(t, err)
}

func TestSliceUtils(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, StringSliceDedup([]string{"b", "a", "b"}))
	assert.Equal(t, []string{"10.8.8.8", "10.9.9.9"}, StringSliceSubtract(
		[]string{"10.9.9.9", "10.8.8.8", "10.72.1.100"},
		[]string{"192.168.2.2", "10.72.1.100"},
	))
	assert.Empty(t, StringSliceSubtract(nil, []string{"a"}))
}
