// Copyright (c) 2026 Komira. All rights reserved.

/*
Package uuid generates the identifiers used for every primary key on the
platform. Values are UUID version 7, so keys sort by creation time and
keep PostgreSQL B-tree indexes dense, while still fitting the standard
'uuid' column type.
*/
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string. Generation only fails when the
// system entropy source does, which is not a recoverable state.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}
