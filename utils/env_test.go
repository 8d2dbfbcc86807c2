package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `# provider keys
FILEAGENT_TEST_PLAIN=plain
export FILEAGENT_TEST_EXPORTED=exported
FILEAGENT_TEST_QUOTED="with spaces"
FILEAGENT_TEST_SINGLE='single'
FILEAGENT_TEST_EQUALS=a=b
FILEAGENT_TEST_PRESET=from-file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	for _, key := range []string{"FILEAGENT_TEST_PLAIN", "FILEAGENT_TEST_EXPORTED", "FILEAGENT_TEST_QUOTED", "FILEAGENT_TEST_SINGLE", "FILEAGENT_TEST_EQUALS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("FILEAGENT_TEST_PRESET", "from-shell")

	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "plain", os.Getenv("FILEAGENT_TEST_PLAIN"))
	assert.Equal(t, "exported", os.Getenv("FILEAGENT_TEST_EXPORTED"))
	assert.Equal(t, "with spaces", os.Getenv("FILEAGENT_TEST_QUOTED"))
	assert.Equal(t, "single", os.Getenv("FILEAGENT_TEST_SINGLE"))
	assert.Equal(t, "a=b", os.Getenv("FILEAGENT_TEST_EQUALS"))
	assert.Equal(t, "from-shell", os.Getenv("FILEAGENT_TEST_PRESET"))
}

func TestLoadEnvFileErrors(t *testing.T) {
	err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_AN_ASSIGNMENT\n"), 0600))
	err = LoadEnvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid env line 1")
}
