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

//go:build cozodb

package cozodb

/*
#cgo LDFLAGS: -lcozo_c
#include <stdlib.h>
#include <stdbool.h>
#include <stdint.h>
#include "cozo_c.h"
*/
import "C"

import (
	"encoding/json"
	"fmt"
	"unsafe"
)

// CozoDB is a handle to an open CozoDB instance.
type CozoDB struct {
	id C.int32_t
}

// NamedRows is the tabular result of a query.
type NamedRows struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
	// Took is the engine-reported query time in seconds.
	Took float64 `json:"-"`
}

// Error is an error reported by the CozoDB engine.
type Error struct {
	Message string
	Display string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Display
}

type response struct {
	OK      bool                 `json:"ok"`
	Headers []string             `json:"headers"`
	Rows    [][]any              `json:"rows"`
	Took    float64              `json:"took"`
	Message string               `json:"message"`
	Display string               `json:"display"`
	Data    map[string]NamedRows `json:"data"`
}

// New opens a database with the given storage engine at path.
// options is encoded as JSON and passed to the engine; nil means "{}".
func New(engine, path string, options map[string]any) (CozoDB, error) {
	if options == nil {
		options = map[string]any{}
	}
	opts, err := json.Marshal(options)
	if err != nil {
		return CozoDB{}, fmt.Errorf("encode options: %w", err)
	}

	cEngine := C.CString(engine)
	defer C.free(unsafe.Pointer(cEngine))
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	cOpts := C.CString(string(opts))
	defer C.free(unsafe.Pointer(cOpts))

	var id C.int32_t
	errStr := C.cozo_open_db(cEngine, cPath, cOpts, &id)
	if errStr != nil {
		defer C.cozo_free_str(errStr)
		return CozoDB{}, &Error{Message: C.GoString(errStr)}
	}
	return CozoDB{id: id}, nil
}

// Close releases the database. Using the handle afterwards is an error.
func (db *CozoDB) Close() {
	C.cozo_close_db(db.id)
}

// Run executes a script that may mutate the database.
func (db *CozoDB) Run(script string, params map[string]any) (NamedRows, error) {
	return db.run(script, params, false)
}

// RunReadOnly executes a script with immutable_query set, so any mutation
// is rejected by the engine.
func (db *CozoDB) RunReadOnly(script string, params map[string]any) (NamedRows, error) {
	return db.run(script, params, true)
}

func (db *CozoDB) run(script string, params map[string]any, immutable bool) (NamedRows, error) {
	if params == nil {
		params = map[string]any{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return NamedRows{}, fmt.Errorf("encode params: %w", err)
	}

	cScript := C.CString(script)
	defer C.free(unsafe.Pointer(cScript))
	cParams := C.CString(string(paramsJSON))
	defer C.free(unsafe.Pointer(cParams))

	out := C.cozo_run_query(db.id, cScript, cParams, C.bool(immutable))
	resp, err := decode(out)
	if err != nil {
		return NamedRows{}, err
	}
	return NamedRows{Headers: resp.Headers, Rows: resp.Rows, Took: resp.Took}, nil
}

// ImportRelations writes the given rows into stored relations, keyed by
// relation name. Columns are matched by header name.
func (db *CozoDB) ImportRelations(data map[string]NamedRows) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode import payload: %w", err)
	}
	cPayload := C.CString(string(payload))
	defer C.free(unsafe.Pointer(cPayload))

	_, err = decode(C.cozo_import_relations(db.id, cPayload))
	return err
}

// ExportRelations reads whole stored relations.
func (db *CozoDB) ExportRelations(relations []string) (map[string]NamedRows, error) {
	payload, err := json.Marshal(map[string]any{"relations": relations})
	if err != nil {
		return nil, fmt.Errorf("encode export payload: %w", err)
	}
	cPayload := C.CString(string(payload))
	defer C.free(unsafe.Pointer(cPayload))

	resp, err := decode(C.cozo_export_relations(db.id, cPayload))
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Backup writes a snapshot of the database to path.
func (db *CozoDB) Backup(path string) error {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	_, err := decode(C.cozo_backup(db.id, cPath))
	return err
}

// Restore loads a snapshot written by Backup. The database must be empty.
func (db *CozoDB) Restore(path string) error {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	_, err := decode(C.cozo_restore(db.id, cPath))
	return err
}

// decode takes ownership of a C string returned by the engine.
func decode(out *C.char) (*response, error) {
	if out == nil {
		return nil, &Error{Message: "empty response from engine"}
	}
	defer C.cozo_free_str(out)

	var resp response
	if err := json.Unmarshal([]byte(C.GoString(out)), &resp); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	if !resp.OK {
		return nil, &Error{Message: resp.Message, Display: resp.Display}
	}
	return &resp, nil
}
