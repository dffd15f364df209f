package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfit/internal/errors"
)

func newMockLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

// Test parseVersionValue function
func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       interface{}
		path        string
		expected    int64
		expectError bool
	}{
		{
			name:     "int64 value",
			input:    int64(42),
			path:     "test/path",
			expected: 42,
		},
		{
			name:     "float64 value",
			input:    float64(42.0),
			path:     "test/path",
			expected: 42,
		},
		{
			name:     "string value",
			input:    "42",
			path:     "test/path",
			expected: 42,
		},
		{
			name:        "invalid string value",
			input:       "not-a-number",
			path:        "test/path",
			expectError: true,
		},
		{
			name:        "unsupported type",
			input:       []string{"42"},
			path:        "test/path",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, tt.path)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// Test applyGeminiKeyToConfig function
func TestApplyGeminiKeyToConfig(t *testing.T) {
	config := &Config{
		AI: AIConfig{
			ParseResume: OperationAIConfig{},
			ParseJob:    OperationAIConfig{},
			Summarize:   OperationAIConfig{},
		},
	}

	geminiKey := "test-gemini-key"
	applyGeminiKeyToConfig(config, geminiKey)

	assert.Equal(t, geminiKey, config.AI.APIKey)
	assert.Equal(t, geminiKey, config.AI.ParseResume.APIKey)
	assert.Equal(t, geminiKey, config.AI.ParseJob.APIKey)
	assert.Equal(t, geminiKey, config.AI.Summarize.APIKey)
}

func TestApplyGeminiKeyToConfigWithExistingKeys(t *testing.T) {
	existingKey := "existing-parse-resume-key"
	config := &Config{
		AI: AIConfig{
			ParseResume: OperationAIConfig{APIKey: existingKey},
			ParseJob:    OperationAIConfig{},
			Summarize:   OperationAIConfig{},
		},
	}

	geminiKey := "test-gemini-key"
	applyGeminiKeyToConfig(config, geminiKey)

	assert.Equal(t, geminiKey, config.AI.APIKey)
	assert.Equal(t, existingKey, config.AI.ParseResume.APIKey) // Should not overwrite existing
	assert.Equal(t, geminiKey, config.AI.ParseJob.APIKey)
	assert.Equal(t, geminiKey, config.AI.Summarize.APIKey)
}

// Test resolveVaultToken function
func TestResolveVaultToken(t *testing.T) {
	logger := newMockLogger()

	t.Run("token from config", func(t *testing.T) {
		cfg := VaultConfig{Token: "config-token"}
		token, err := resolveVaultToken(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, "config-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token\n"), 0600))

		cfg := VaultConfig{TokenFile: tokenFile}
		token, err := resolveVaultToken(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("config token wins over file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("file-token"), 0600))

		cfg := VaultConfig{Token: "config-token", TokenFile: tokenFile}
		token, err := resolveVaultToken(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, "config-token", token)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		assert.Error(t, err)
	})

	t.Run("unreadable token file", func(t *testing.T) {
		cfg := VaultConfig{TokenFile: filepath.Join(t.TempDir(), "missing")}
		_, err := resolveVaultToken(cfg, logger)
		assert.Error(t, err)
	})
}

// Test NewVaultClient with disabled config
func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{Enabled: false}, newMockLogger())
	require.NoError(t, err)
	assert.Nil(t, client)
}

// Test GetSecretV2 on an uninitialized client
func TestGetSecretV2NilClient(t *testing.T) {
	var vc *VaultClient
	_, err := vc.GetSecretV2("secret/data/test")
	assert.Error(t, err)
}

// Test ApplyVaultSecrets with Vault disabled
func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{Vault: VaultConfig{Enabled: false}}
	err := ApplyVaultSecrets(config, newMockLogger())
	assert.NoError(t, err)
}
