package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "main.toml"), []byte(content), 0o600)
	require.NoError(t, err, "failed to write test config")

	return dir + string(filepath.Separator)
}

const validTOML = `
Title = "Kutumb Backend"
DevMode = false

[Webserver]
Port = 8080
URL = "http://localhost:8080"
ShutDownTime = 2

[Auth]
JWTSecret = "test-secret"

[DB]
GormEngine = "sqlite"
SQLitePath = ":memory:"
Host = "localhost"
`

func TestReadConfig(t *testing.T) {
	path := writeTestConfig(t, validTOML)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Kutumb Backend", cfg.Title)
	assert.Equal(t, 8080, cfg.Webserver.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Webserver.URL)
	assert.Equal(t, "sqlite", cfg.DB.GormEngine)
}

func TestReadConfigEnvOverride(t *testing.T) {
	path := writeTestConfig(t, validTOML)

	t.Setenv("KUTUMB_CONFIG_JSON", `{"Title":"Overridden","DevMode":true}`)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Overridden", cfg.Title)
	assert.True(t, cfg.DevMode)
	// untouched fields survive the merge
	assert.Equal(t, 8080, cfg.Webserver.Port)
}

func TestReadConfigValidation(t *testing.T) {
	testCases := []struct {
		name        string
		toml        string
		expectedErr error
	}{
		{
			name: "missing port",
			toml: `
[Webserver]
URL = "http://localhost"
[Auth]
JWTSecret = "s"
`,
			expectedErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name: "missing url",
			toml: `
[Webserver]
Port = 8080
[Auth]
JWTSecret = "s"
`,
			expectedErr: ErrEmptyURL,
		},
		{
			name: "missing jwt secret",
			toml: `
[Webserver]
Port = 8080
URL = "http://localhost"
`,
			expectedErr: ErrEmptyJWTSecret,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTestConfig(t, tc.toml)

			_, err := ReadConfig(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestDumpConfig(t *testing.T) {
	path := writeTestConfig(t, validTOML)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	out, err := DumpConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Kutumb Backend")

	jsonOut, err := DumpConfigJSON(cfg)
	require.NoError(t, err)
	assert.Contains(t, jsonOut, `"Title": "Kutumb Backend"`)
}
