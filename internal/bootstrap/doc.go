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

// Package bootstrap manages graphdemo session directories.
//
// Every session gets its own database directory under the graphdemo root
// inside the temp directory:
//
//	<temp_dir>/graphdemo/<uuid>/
//
// Directories are kept after the session ends so a database can be
// reopened or inspected later. They are removed only on request:
//
//	dir, err := bootstrap.NewSessionDir(cfg.TempDir, logger)
//	...
//	sessions, err := bootstrap.ListSessions(cfg.TempDir)
//	n, err := bootstrap.RemoveAll(cfg.TempDir, logger)
//
// Removal only touches entries whose names are session UUIDs, so a
// mistyped temp_dir cannot delete unrelated data.
package bootstrap
