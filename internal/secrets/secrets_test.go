// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   Secrets
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeySemanticScholarAPI, "  sk_abc123  \n")
				writeFile(t, dir, KeyEmbeddingAPI, "emb_xyz789\n")
				return dir
			},
			want: Secrets{
				KeySemanticScholarAPI: "sk_abc123",
				KeyEmbeddingAPI:       "emb_xyz789",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyEmbeddingAPI, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{
				KeyEmbeddingAPI: "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, KeySemanticScholarAPI, "sk_real")
				return dir
			},
			want: Secrets{
				KeySemanticScholarAPI: "sk_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyEmbeddingAPI, "emb_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{
				KeyEmbeddingAPI: "emb_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: Secrets{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestAccessorsPreferExplicitFallback(t *testing.T) {
	s := Secrets{
		KeyEmbeddingAPI:       "emb_from_file",
		KeySemanticScholarAPI: "sk_from_file",
	}

	// A config-file value beats the key file.
	assert.Equal(t, "emb_from_config", s.EmbeddingAPIKey("emb_from_config"))
	assert.Equal(t, "sk_from_config", s.SemanticScholarAPIKey("sk_from_config"))

	// Without one, the key file supplies the value.
	assert.Equal(t, "emb_from_file", s.EmbeddingAPIKey(""))
	assert.Equal(t, "sk_from_file", s.SemanticScholarAPIKey(""))

	// Neither configured means no key.
	assert.Equal(t, "", Secrets{}.EmbeddingAPIKey(""))
}

func TestNamesSortedWithoutValues(t *testing.T) {
	s := Secrets{
		KeySemanticScholarAPI: "sk_abc",
		KeyEmbeddingAPI:       "emb_xyz",
	}
	assert.Equal(t, []string{KeyEmbeddingAPI, KeySemanticScholarAPI}, s.Names())
	assert.Empty(t, Secrets{}.Names())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
