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

// Package contract holds limits shared by every graphdemo entry point.
//
// Free-form statements are checked before they are queued so an
// accidentally pasted file does not reach the engine:
//
//	if r := contract.ValidateStatement(text); !r.OK {
//	    return errors.NewInputError(r.Message, "", "")
//	}
//
// The limit defaults to 1 MiB and can be raised with
// GRAPHDEMO_MAX_STATEMENT_BYTES.
package contract
