package main

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSubmissionsIsDeterministic(t *testing.T) {
	a := generateSubmissions(rand.New(rand.NewSource(7)), 4)
	b := generateSubmissions(rand.New(rand.NewSource(7)), 4)

	require.Len(t, a, 4)
	assert.Equal(t, a, b)
	for _, cmd := range a {
		assert.NotEmpty(t, cmd.Company)
		assert.Contains(t, cmd.Email, "@example.com")
		assert.Contains(t, cmd.Coords, ",")
		assert.Empty(t, cmd.Honeypot)
	}
}

func TestPrintDryRun(t *testing.T) {
	commands := generateSubmissions(rand.New(rand.NewSource(1)), 2)
	var out bytes.Buffer

	err := printDryRun(&out, commands, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp | company | email | role | coords", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-05-01T00:00:00.000000+00:00 | "))
	assert.Contains(t, lines[1], commands[0].Coords)
}

func TestPrintLogEmpty(t *testing.T) {
	assert.Error(t, printLog(&bytes.Buffer{}, nil))
}

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEnvFile(t *testing.T) {
	path := writeEnvFile(t, "# comment\n\nexport SEED_TEST_BUCKET=\"forms\"\nSEED_TEST_KEY='log.csv'\nSEED_TEST_QUOTE=\"half\nSEED_TEST_EQ=a=b\n")
	for _, key := range []string{"SEED_TEST_BUCKET", "SEED_TEST_KEY", "SEED_TEST_QUOTE", "SEED_TEST_EQ"} {
		unsetEnv(t, key)
	}

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "forms", os.Getenv("SEED_TEST_BUCKET"))
	assert.Equal(t, "log.csv", os.Getenv("SEED_TEST_KEY"))
	assert.Equal(t, `"half`, os.Getenv("SEED_TEST_QUOTE"))
	assert.Equal(t, "a=b", os.Getenv("SEED_TEST_EQ"))
}

func TestLoadEnvFileKeepsProcessEnvironment(t *testing.T) {
	path := writeEnvFile(t, "SEED_TEST_BUCKET=from-file\n")
	t.Setenv("SEED_TEST_BUCKET", "from-shell")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-shell", os.Getenv("SEED_TEST_BUCKET"))
}

func TestLoadEnvFileRejectsMalformedLine(t *testing.T) {
	path := writeEnvFile(t, "SEED_TEST_BUCKET=forms\ninvalid line\n")
	unsetEnv(t, "SEED_TEST_BUCKET")

	err := loadEnvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local.env:2")
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "umbrellainc", slug("Umbrella, Inc."))
}
