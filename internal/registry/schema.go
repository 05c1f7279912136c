package registry

import _ "embed"

// Schema is the DDL for the registry's postgres stores. The integration test
// harness applies it to fresh containers.
//
//go:embed schema.sql
var Schema string
