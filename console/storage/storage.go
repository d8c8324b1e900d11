// Package storage is the durable layer beneath the entity store: a flat set
// of string-keyed JSON blobs, one per collection, round-tripped verbatim.
package storage

import "errors"

// Storage keys, one per persisted collection. These names are part of the
// on-disk contract and must not change.
const (
	KeyUsers       = "platform_users"
	KeyEditors     = "app_editors"
	KeyRoles       = "role_definitions"
	KeyCategories  = "category_definitions"
	KeyVisibility  = "visibility_config"
	KeyAuditLogs   = "audit_logs"
	KeyMasterCreds = "custom_master_creds"
)

var ErrKeyNotFound = errors.New("storage key not found")

type Blobs interface {
	// Get returns the blob stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Put stores the blob under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes the blob under key. Deleting an absent key is not an
	// error.
	Delete(key string) error
}
