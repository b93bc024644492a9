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

// Package config loads graphdemo settings.
//
// Settings are resolved in this order, later sources winning:
//
//  1. built-in defaults
//  2. the YAML file (./graphdemo.yaml unless --config names another)
//  3. GRAPHDEMO_* environment variables
//  4. command-line flags that were set explicitly
//
// A missing default file is not an error; a missing file named with
// --config is.
package config
