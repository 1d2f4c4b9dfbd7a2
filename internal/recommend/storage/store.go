// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/metrics"
	"github.com/tomtom215/retailrec/internal/recommend"
)

const (
	generationsDir = "generations"
	currentFile    = "CURRENT"
	tmpPrefix      = ".tmp-"
)

// ErrGenerationExists is returned when saving a generation id twice.
var ErrGenerationExists = errors.New("generation already stored")

// Store persists generations as bundle directories under baseDir:
//
//	<baseDir>/generations/<id>/manifest.json
//	<baseDir>/generations/<id>/<component>.gob.gz
//	<baseDir>/CURRENT
//
// A bundle is assembled in a temporary directory and renamed into place,
// then CURRENT is switched to it. A crash at any point leaves either the
// previous bundle or the new one current, never a partial one.
type Store struct {
	baseDir string
	keep    int
	logger  zerolog.Logger

	mu sync.RWMutex
}

// NewStore creates a new generation store at the given directory. keep is
// the number of bundles retained after each save; values below 1 keep one.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(baseDir string, keep int, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, generationsDir), 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if keep < 1 {
		keep = 1
	}

	s := &Store{
		baseDir: baseDir,
		keep:    keep,
		logger:  logger.With().Str("component", "generation_store").Logger(),
	}
	s.removeStaleTemp()
	return s, nil
}

// Save persists g as one bundle and makes it current.
func (s *Store) Save(ctx context.Context, g *recommend.Generation) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("save", time.Since(start), err) }()

	if err := validID(g.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.bundleDir(g.ID)
	if _, err := os.Stat(final); err == nil {
		return fmt.Errorf("%s: %w", g.ID, ErrGenerationExists)
	}

	tmp, err := os.MkdirTemp(filepath.Join(s.baseDir, generationsDir), tmpPrefix+g.ID+"-")
	if err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(tmp) //nolint:errcheck // best-effort cleanup of partial bundle
		}
	}()

	manifest := &Manifest{
		GenerationID:  g.ID,
		SchemaVersion: g.SchemaVersion,
		CreatedAt:     g.CreatedAt,
		SavedAt:       time.Now().UTC(),
		HasEmbeddings: g.Embeddings != nil,
		Stats:         g.Stats(),
	}

	components := []struct {
		name string
		data any
	}{
		{ComponentMatrix, g.Matrix},
		{ComponentSimilarity, g.Similarity},
		{ComponentWeights, g.Weights},
		{ComponentProducts, g.Products},
	}
	if g.Embeddings != nil {
		components = append(components, struct {
			name string
			data any
		}{ComponentEmbeddings, g.Embeddings})
	}

	for _, c := range components {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := writeComponent(tmp, c.name, c.data)
		if err != nil {
			return err
		}
		manifest.Components = append(manifest.Components, info)
	}

	if err := writeManifest(tmp, manifest); err != nil {
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("install bundle: %w", err)
	}
	if err := writeFileAtomic(s.currentPath(), []byte(g.ID+"\n")); err != nil {
		return fmt.Errorf("update current pointer: %w", err)
	}

	s.logger.Info().
		Str("generation", g.ID).
		Int("components", len(manifest.Components)).
		Msg("generation saved")

	if err := s.pruneLocked(s.keep); err != nil {
		s.logger.Warn().Err(err).Msg("failed to prune old generations")
	}
	return nil
}

// Load returns the current generation. Every failure, including a missing
// or corrupt component, wraps recommend.ErrNotReady.
func (s *Store) Load(ctx context.Context) (g *recommend.Generation, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("load", time.Since(start), err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, err := s.currentID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", recommend.ErrNotReady, err)
	}
	g, err = s.loadLocked(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: generation %s: %w", recommend.ErrNotReady, id, err)
	}
	return g, nil
}

// LoadGeneration returns a specific stored generation.
func (s *Store) LoadGeneration(ctx context.Context, id string) (*recommend.Generation, error) {
	if err := validID(id); err != nil {
		return nil, fmt.Errorf("%w: %w", recommend.ErrNotReady, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.loadLocked(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: generation %s: %w", recommend.ErrNotReady, id, err)
	}
	return g, nil
}

func (s *Store) loadLocked(ctx context.Context, id string) (*recommend.Generation, error) {
	dir := s.bundleDir(id)
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest.GenerationID != id {
		return nil, fmt.Errorf("manifest names generation %q", manifest.GenerationID)
	}
	if err := manifest.check(); err != nil {
		return nil, err
	}

	g := &recommend.Generation{
		ID:            manifest.GenerationID,
		SchemaVersion: manifest.SchemaVersion,
		CreatedAt:     manifest.CreatedAt,
		Matrix:        &recommend.InteractionMatrix{},
		Similarity:    &recommend.SimilarityMatrix{},
	}

	targets := map[string]any{
		ComponentMatrix:     g.Matrix,
		ComponentSimilarity: g.Similarity,
		ComponentWeights:    &g.Weights,
		ComponentProducts:   &g.Products,
	}
	if manifest.HasEmbeddings {
		g.Embeddings = &recommend.FactorEmbeddings{}
		targets[ComponentEmbeddings] = g.Embeddings
	}

	for name, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, _ := manifest.Component(name)
		if err := readComponent(dir, info, target); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}
	return g, nil
}

// List returns the manifests of all complete bundles, newest first.
// Bundles with an unreadable manifest are skipped.
func (s *Store) List(ctx context.Context) ([]Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *Store) listLocked() ([]Manifest, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, generationsDir))
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var manifests []Manifest
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}
		m, err := readManifest(s.bundleDir(entry.Name()))
		if err != nil {
			s.logger.Debug().Err(err).Str("bundle", entry.Name()).Msg("skipping incomplete bundle")
			continue
		}
		manifests = append(manifests, *m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].CreatedAt.After(manifests[j].CreatedAt)
	})
	return manifests, nil
}

// Current returns the id CURRENT points to.
func (s *Store) Current() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID()
}

// Prune removes old bundles, keeping only the newest keep. The current
// bundle is never removed.
func (s *Store) Prune(ctx context.Context, keep int) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("prune", time.Since(start), err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(keep)
}

func (s *Store) pruneLocked(keep int) error {
	if keep < 1 {
		keep = 1
	}

	manifests, err := s.listLocked()
	if err != nil {
		return err
	}
	current, _ := s.currentID()

	for i, m := range manifests {
		if i < keep || m.GenerationID == current {
			continue
		}
		if err := os.RemoveAll(s.bundleDir(m.GenerationID)); err != nil {
			return fmt.Errorf("remove generation %s: %w", m.GenerationID, err)
		}
		s.logger.Debug().Str("generation", m.GenerationID).Msg("pruned generation")
	}
	return nil
}

// removeStaleTemp deletes bundles left behind by an interrupted save.
func (s *Store) removeStaleTemp() {
	dir := filepath.Join(s.baseDir, generationsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), tmpPrefix) {
			_ = os.RemoveAll(filepath.Join(dir, entry.Name())) //nolint:errcheck // best-effort cleanup
			s.logger.Info().Str("bundle", entry.Name()).Msg("removed incomplete bundle")
		}
	}
}

func (s *Store) currentID() (string, error) {
	data, err := os.ReadFile(s.currentPath())
	if err != nil {
		return "", fmt.Errorf("read current pointer: %w", err)
	}
	id := strings.TrimSpace(string(data))
	if err := validID(id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) currentPath() string {
	return filepath.Join(s.baseDir, currentFile)
}

// bundleDir returns the directory of a generation bundle.
func (s *Store) bundleDir(id string) string {
	return filepath.Join(s.baseDir, generationsDir, id)
}

// validID accepts only UUIDs so ids can never escape the store directory.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid generation id %q: %w", id, err)
	}
	return nil
}
