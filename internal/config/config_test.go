package config

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func noHome() (string, error) { return "", os.ErrNotExist }

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithEnvLookup(envMap(nil)), WithHomeDir(noHome))
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, DefaultAuthURL, cfg.AuthURL)
	require.Equal(t, DefaultClientID, cfg.ClientID)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Error(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	cfg, err := Load(
		WithEnvLookup(envMap(map[string]string{
			"HARI_API_BASE_URL":    "https://hari.example.com/v1/",
			"HARI_USERNAME":        "annotator",
			"HARI_PASSWORD":        "secret",
			"HARI_TIMEOUT_SECONDS": "120",
		})),
		WithHomeDir(noHome),
	)
	require.NoError(t, err)
	require.Equal(t, "https://hari.example.com/v1", cfg.BaseURL, "trailing slash is trimmed")
	require.Equal(t, 120*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesCredentialsFile(t *testing.T) {
	fileContent := []byte("username: from-file\npassword: file-secret\nclient_id: custom-client\n")
	cfg, err := Load(
		WithEnvLookup(envMap(map[string]string{"HARI_USERNAME": "from-env"})),
		WithHomeDir(func() (string, error) { return "/home/annotator", nil }),
		WithReadFile(func(path string) ([]byte, error) {
			require.Equal(t, "/home/annotator/.hari/credentials.yaml", path)
			return fileContent, nil
		}),
	)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Username)
	require.Equal(t, "file-secret", cfg.Password)
	require.Equal(t, "custom-client", cfg.ClientID)
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		_, err := Load(
			WithEnvLookup(envMap(map[string]string{"HARI_TIMEOUT_SECONDS": raw})),
			WithHomeDir(noHome),
		)
		require.Error(t, err, fmt.Sprintf("timeout %q should be rejected", raw))
	}
}
