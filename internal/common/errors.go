// Package common holds sentinel errors shared between repositories,
// the import engine and the CLI.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// configuration errors, raised before a run starts
	ErrorBadPattern   = errors.New("invalid filter pattern")
	ErrorUnmappedKey  = errors.New("duplicate key has no field mapping")
	ErrorNoCredential = errors.New("endpoint or API key not configured")

	// per-candidate outcome, absorbed by the importer
	ErrorProvisioning = errors.New("account provisioning refused")
)
