// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

// Package storage persists recommendation generations as self-describing
// bundles.
//
// # Overview
//
// The storage system provides:
//   - Gob serialization for efficient Go type encoding
//   - Gzip compression to reduce storage footprint
//   - SHA-256 checksums for data integrity verification
//   - A JSON manifest listing every component of a bundle
//   - Automatic cleanup of old generations
//
// # Directory Structure
//
//	/data/generations/
//	  CURRENT                          <- id of the serving bundle
//	  generations/
//	    0b6c...e1/
//	      manifest.json
//	      matrix.gob.gz
//	      embeddings.gob.gz            <- absent for content-only generations
//	      similarity.gob.gz
//	      weights.gob.gz
//	      products.gob.gz
//
// # Atomicity
//
// Save writes every component and then the manifest into a temporary
// directory, renames it into place, and finally replaces CURRENT through
// a temp file and rename. Load rejects the whole bundle when the manifest
// is missing, names a component that cannot be read, or a checksum does
// not match; the error wraps recommend.ErrNotReady so the engine treats it
// as a cache miss.
//
// # Usage Example
//
//	store, err := storage.NewStore("/data/generations", 3, logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetStore(store)
//
//	if err := engine.Restore(ctx); err != nil {
//	    // nothing usable on disk, train instead
//	}
//
// # Thread Safety
//
// All store operations are safe for concurrent use within one process.
// Loads run concurrently; saves and prunes are exclusive.
package storage
