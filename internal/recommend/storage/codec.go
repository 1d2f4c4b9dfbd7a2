// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeComponent gob-encodes data, gzips it into dir/<name>.gob.gz, and
// returns its manifest entry. The checksum covers the uncompressed bytes.
func writeComponent(dir, name string, data any) (ComponentInfo, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return ComponentInfo{}, fmt.Errorf("encode %s: %w", name, err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return ComponentInfo{}, fmt.Errorf("compress %s: %w", name, err)
	}
	if err := gzw.Close(); err != nil {
		return ComponentInfo{}, fmt.Errorf("finalize compression of %s: %w", name, err)
	}

	file := name + ".gob.gz"
	if err := writeFileSync(filepath.Join(dir, file), compressed.Bytes()); err != nil {
		return ComponentInfo{}, err
	}

	return ComponentInfo{
		Name:      name,
		File:      file,
		Checksum:  hex.EncodeToString(hash[:]),
		SizeBytes: int64(compressed.Len()),
	}, nil
}

// readComponent loads a component listed in the manifest into target,
// verifying its checksum before decoding.
func readComponent(dir string, info ComponentInfo, target any) error {
	if info.File != filepath.Base(info.File) {
		return fmt.Errorf("component %s has invalid file name %q", info.Name, info.File)
	}

	f, err := os.Open(filepath.Join(dir, info.File)) //nolint:gosec // file name checked above
	if err != nil {
		return fmt.Errorf("open %s: %w", info.Name, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", info.Name, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return fmt.Errorf("read decompressed %s: %w", info.Name, err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != info.Checksum {
		return fmt.Errorf("%s checksum mismatch: expected %s, got %s", info.Name, info.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", info.Name, err)
	}
	return nil
}

// writeFileSync writes data to path and flushes it to disk.
func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640) //nolint:gosec // path is inside the store directory
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close() //nolint:errcheck // sync error takes precedence
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// writeFileAtomic replaces path with data through a temp file and rename,
// so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) } //nolint:errcheck // best-effort cleanup

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error takes precedence
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
