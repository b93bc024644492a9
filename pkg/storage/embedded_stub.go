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

//go:build !cozodb

package storage

import "context"

// EmbeddedBackend is a placeholder in builds without the cozodb tag.
// NewEmbeddedBackend always fails, so none of its methods are reachable.
type EmbeddedBackend struct{}

// EmbeddedConfig configures the embedded backend.
type EmbeddedConfig struct {
	DataDir string
	Engine  string
}

// NewEmbeddedBackend reports ErrUnavailable.
func NewEmbeddedBackend(config EmbeddedConfig) (*EmbeddedBackend, error) {
	return nil, ErrUnavailable
}

func (b *EmbeddedBackend) Run(ctx context.Context, script string, params map[string]any) (*QueryResult, error) {
	return nil, ErrUnavailable
}

func (b *EmbeddedBackend) RunReadOnly(ctx context.Context, script string, params map[string]any) (*QueryResult, error) {
	return nil, ErrUnavailable
}

func (b *EmbeddedBackend) Import(ctx context.Context, relation string, headers []string, rows [][]any) error {
	return ErrUnavailable
}

func (b *EmbeddedBackend) Backup(ctx context.Context, path string) error { return ErrUnavailable }

func (b *EmbeddedBackend) Restore(ctx context.Context, path string) error { return ErrUnavailable }

func (b *EmbeddedBackend) Close() error { return nil }
