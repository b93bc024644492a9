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

package bootstrap

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// rootName is the directory under temp_dir that holds all sessions.
const rootName = "graphdemo"

// SessionInfo describes one session directory.
type SessionInfo struct {
	ID       string
	Path     string
	Size     int64
	Modified time.Time
}

// Root returns the directory holding every session. An empty tempDir means
// the system temp directory.
func Root(tempDir string) string {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return filepath.Join(tempDir, rootName)
}

// NewSessionDir creates a fresh, uniquely named session directory.
func NewSessionDir(tempDir string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	dir := filepath.Join(Root(tempDir), id)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	logger.Info("bootstrap.session.create", "id", id, "dir", dir)
	return dir, nil
}

// ListSessions returns the session directories under tempDir, newest
// first. A missing root means there are no sessions.
func ListSessions(tempDir string) ([]SessionInfo, error) {
	root := Root(tempDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session root: %w", err)
	}

	var sessions []SessionInfo
	for _, entry := range entries {
		if !isSession(entry) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat session %s: %w", entry.Name(), err)
		}
		path := filepath.Join(root, entry.Name())
		size, err := dirSize(path)
		if err != nil {
			return nil, fmt.Errorf("size of session %s: %w", entry.Name(), err)
		}
		sessions = append(sessions, SessionInfo{
			ID:       entry.Name(),
			Path:     path,
			Size:     size,
			Modified: info.ModTime(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Modified.After(sessions[j].Modified)
	})
	return sessions, nil
}

// RemoveSession deletes the session directory with the given id.
func RemoveSession(tempDir, id string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid session id %q: %w", id, err)
	}

	dir := filepath.Join(Root(tempDir), id)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("session %s: %w", id, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove session %s: %w", id, err)
	}
	logger.Info("bootstrap.session.remove", "id", id, "dir", dir)
	return nil
}

// RemoveAll deletes every session directory and returns how many were
// removed.
func RemoveAll(tempDir string, logger *slog.Logger) (int, error) {
	sessions, err := ListSessions(tempDir)
	if err != nil {
		return 0, err
	}
	for i, s := range sessions {
		if err := RemoveSession(tempDir, s.ID, logger); err != nil {
			return i, err
		}
	}
	return len(sessions), nil
}

func isSession(entry fs.DirEntry) bool {
	if !entry.IsDir() {
		return false
	}
	_, err := uuid.Parse(entry.Name())
	return err == nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}
