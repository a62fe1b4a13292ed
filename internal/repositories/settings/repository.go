// Package settings is the repository over the flat key/value configuration
// table. The whole table is read once at run start; the API key is stored
// as an encrypted blob and decrypted only when the IdP client is built.
package settings

import "context"

type Repository interface {
	// GetAll reads the configuration table wholesale.
	GetAll(ctx context.Context) (map[string]string, error)

	// Set writes one configuration entry.
	Set(ctx context.Context, name, value string) error
}
