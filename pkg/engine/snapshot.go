// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	manifestFile     = "checkpoint.json"
	snapshotFile     = "checkpoint.db"
	snapshotFileZstd = "checkpoint.db.zst"
)

// snapshotManifest describes the last completed checkpoint of an in-memory
// database. It is only written once the snapshot file is in place.
type snapshotManifest struct {
	File       string `json:"file"`
	Compressed bool   `json:"compressed"`
	Mutations  uint64 `json:"mutations"`
	Storage    string `json:"storage"`
	CreatedAt  string `json:"created_at"`
}

// writeSnapshot backs the database up next to its manifest.
func (db *Database) writeSnapshot(ctx context.Context, mutations uint64) error {
	raw := filepath.Join(db.path, "checkpoint.backup.tmp")
	_ = os.Remove(raw) // the backend refuses to overwrite
	if err := db.backend.Backup(ctx, raw); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	defer func() { _ = os.Remove(raw) }()

	name := snapshotFile
	if db.config.EnableCompression {
		name = snapshotFileZstd
	}
	final := filepath.Join(db.path, name)
	tmp := final + ".tmp"

	if db.config.EnableCompression {
		if err := compressFile(raw, tmp); err != nil {
			_ = os.Remove(tmp)
			return err
		}
	} else if err := os.Rename(raw, tmp); err != nil {
		return fmt.Errorf("stage snapshot: %w", err)
	}

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}

	m := snapshotManifest{
		File:       name,
		Compressed: db.config.EnableCompression,
		Mutations:  mutations,
		Storage:    db.config.Storage,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := writeManifest(filepath.Join(db.path, manifestFile), m); err != nil {
		return err
	}

	// Drop a snapshot left by an earlier run with the other compression setting.
	stale := snapshotFile
	if name == snapshotFile {
		stale = snapshotFileZstd
	}
	_ = os.Remove(filepath.Join(db.path, stale))
	return nil
}

// restoreSnapshot loads the last checkpoint, if the directory has one.
func (db *Database) restoreSnapshot(ctx context.Context) (bool, error) {
	m, err := readManifest(filepath.Join(db.path, manifestFile))
	if err != nil || m == nil {
		return false, err
	}

	src := filepath.Join(db.path, m.File)
	if m.Compressed {
		plain := filepath.Join(db.path, "checkpoint.restore.tmp")
		_ = os.Remove(plain)
		if err := decompressFile(src, plain); err != nil {
			_ = os.Remove(plain)
			return false, err
		}
		defer func() { _ = os.Remove(plain) }()
		src = plain
	}

	if err := db.backend.Restore(ctx, src); err != nil {
		return false, fmt.Errorf("restore %s: %w", m.File, err)
	}
	return true, nil
}

func writeManifest(path string, m snapshotManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	// Write atomically (temp file + rename)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write manifest temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

func readManifest(path string) (*snapshotManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m snapshotManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.File == "" {
		return nil, fmt.Errorf("manifest %s names no snapshot file", path)
	}
	return &m, nil
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create compressed snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("zstd writer: %w", err)
	}
	if _, err := io.Copy(enc, in); err != nil {
		_ = enc.Close()
		_ = out.Close()
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("flush compressed snapshot: %w", err)
	}
	return out.Close()
}

func decompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer func() { _ = in.Close() }()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := io.Copy(out, dec); err != nil {
		_ = out.Close()
		return fmt.Errorf("decompress snapshot: %w", err)
	}
	return out.Close()
}
