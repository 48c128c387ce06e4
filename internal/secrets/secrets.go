// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the
// key name and the file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Key files the CLI looks for.
const (
	KeyEmbeddingAPI       = "embedding-api-key"
	KeySemanticScholarAPI = "semantic-scholar-api-key"
)

// Secrets maps key names to their loaded values.
type Secrets map[string]string

// Load reads all files in dir into a Secrets map. A missing directory or
// missing files are not errors; Load returns an empty map. Unreadable
// files produce a warning on stderr but do not abort.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// EmbeddingAPIKey returns the embedding service key. A non-empty
// fallback (typically the config file value) takes precedence over the
// key file.
func (s Secrets) EmbeddingAPIKey(fallback string) string {
	return s.get(KeyEmbeddingAPI, fallback)
}

// SemanticScholarAPIKey returns the Semantic Scholar key, with the same
// fallback precedence as EmbeddingAPIKey.
func (s Secrets) SemanticScholarAPIKey(fallback string) string {
	return s.get(KeySemanticScholarAPI, fallback)
}

func (s Secrets) get(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return s[key]
}

// Names returns the loaded key names in sorted order, for logging which
// secrets were found without echoing their values.
func (s Secrets) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
