package persistence

import _ "embed"

// Schema is the Spanner DDL for the Users and Events tables.
//
//go:embed schema.sql
var Schema string
