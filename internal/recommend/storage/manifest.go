// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// Component names. Each is stored as <name>.gob.gz inside the bundle.
const (
	ComponentMatrix     = "matrix"
	ComponentEmbeddings = "embeddings"
	ComponentSimilarity = "similarity"
	ComponentWeights    = "weights"
	ComponentProducts   = "products"
)

const manifestFile = "manifest.json"

// requiredComponents must be present in every bundle. Embeddings are
// required only when the manifest says the generation has them.
var requiredComponents = []string{
	ComponentMatrix,
	ComponentSimilarity,
	ComponentWeights,
	ComponentProducts,
}

// ComponentInfo describes one stored component file.
type ComponentInfo struct {
	// Name is the component name (e.g., "matrix").
	Name string `json:"name"`

	// File is the file name relative to the bundle directory.
	File string `json:"file"`

	// Checksum is the SHA-256 checksum of the uncompressed gob data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed file size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// Manifest describes a persisted generation. It is written last, so a
// bundle directory without a manifest was never completed.
type Manifest struct {
	GenerationID  string    `json:"generation_id"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	SavedAt       time.Time `json:"saved_at"`

	// HasEmbeddings is false for content-only generations.
	HasEmbeddings bool `json:"has_embeddings"`

	Stats      recommend.Stats `json:"stats"`
	Components []ComponentInfo `json:"components"`
}

// Component returns the named component entry.
func (m *Manifest) Component(name string) (ComponentInfo, bool) {
	for _, c := range m.Components {
		if c.Name == name {
			return c, true
		}
	}
	return ComponentInfo{}, false
}

// check verifies the manifest lists everything a loader needs.
func (m *Manifest) check() error {
	if m.GenerationID == "" {
		return fmt.Errorf("manifest has no generation id")
	}
	if m.SchemaVersion != recommend.SchemaVersion {
		return fmt.Errorf("schema version %d, want %d", m.SchemaVersion, recommend.SchemaVersion)
	}
	want := requiredComponents
	if m.HasEmbeddings {
		want = append(append([]string(nil), want...), ComponentEmbeddings)
	}
	for _, name := range want {
		if _, ok := m.Component(name); !ok {
			return fmt.Errorf("manifest lists no %s component", name)
		}
	}
	return nil
}

func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return writeFileSync(filepath.Join(dir, manifestFile), data)
}

func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile)) //nolint:gosec // path built from validated generation id
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
