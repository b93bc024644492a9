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

// Package testing provides test helpers for engine integration tests.
//
// The helpers open real engine databases, so tests using them need the
// embedded CozoDB library and the cozodb build tag.
//
// # Quick Start
//
// Use SetupTestDB to open a database and a connection:
//
//	//go:build cozodb
//
//	func TestMyFeature(t *testing.T) {
//	    _, conn := testing.SetupTestDB(t, engine.StorageMem)
//
//	    testing.CreateTestDocs(t, conn, map[int64]string{1: "first"})
//
//	    ids := testing.QueryIDs(t, conn, "doc")
//	    require.Equal(t, []int64{1}, ids)
//	}
//
// # Seeding Test Data
//
//   - CreateTestDocs: Create the full-text doc relation and insert rows
//   - CreateTestVectors: Create the tbl vector relation and insert rows
//
// # Querying Test Data
//
//   - MustQuery: Run a statement, failing the test on error
//   - QueryIDs: Get the sorted ids of a relation
//
// # Durability
//
// OpenTestDB reopens a directory, which is how checkpoint tests check that
// data written before Close is visible to a fresh database.
package testing
