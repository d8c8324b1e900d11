// Package export defines the file formats the console reads and writes:
// the JSON backup bundle, the role structure file and the spreadsheet export.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"campusdata/console/schema"
)

var (
	ErrInvalidBackup    = errors.New("not a valid backup file")
	ErrInvalidStructure = errors.New("not a valid role structure file")
)

// Bundle is the full backup file format. Collections are pointers so a
// restore can tell an absent key (collection untouched) from an empty one
// (collection cleared).
type Bundle struct {
	Timestamp         string                         `json:"timestamp"`
	Users             *[]schema.PlatformUser         `json:"users,omitempty"`
	RoleDefinitions   *[]schema.ObjectRoleDefinition `json:"roleDefinitions,omitempty"`
	Editors           *[]schema.AppEditor            `json:"editors,omitempty"`
	Categories        *[]schema.CategoryDefinition   `json:"categories,omitempty"`
	VisibilityConfig  *schema.FieldVisibilityConfig  `json:"visibilityConfig,omitempty"`
	AuditLogs         *[]schema.AuditLogEntry        `json:"auditLogs,omitempty"`
	CustomMasterCreds *schema.MasterCredentials      `json:"customMasterCreds,omitempty"`
}

// Stamp sets the bundle's creation timestamp.
func (b *Bundle) Stamp(t time.Time) {
	b.Timestamp = t.UTC().Format(time.RFC3339)
}

// ParseBundle decodes and validates a backup file. A file qualifies as a
// backup if it carries at least a users or a roleDefinitions collection.
func ParseBundle(data []byte) (Bundle, error) {
	var bundle Bundle
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&bundle); err != nil {
		return Bundle{}, ErrInvalidBackup
	}

	if bundle.Users == nil && bundle.RoleDefinitions == nil {
		return Bundle{}, ErrInvalidBackup
	}
	return bundle, nil
}

// ParseRoleStructure decodes a role structure file. Both the dedicated
// structure format ("roles") and a full backup ("roleDefinitions") are
// accepted, so a backup can double as a structure source.
func ParseRoleStructure(data []byte) ([]schema.ObjectRoleDefinition, error) {
	var file struct {
		Roles           *[]schema.ObjectRoleDefinition `json:"roles"`
		RoleDefinitions *[]schema.ObjectRoleDefinition `json:"roleDefinitions"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, ErrInvalidStructure
	}

	switch {
	case file.Roles != nil:
		return *file.Roles, nil
	case file.RoleDefinitions != nil:
		return *file.RoleDefinitions, nil
	default:
		return nil, ErrInvalidStructure
	}
}

// RoleStructure is the export format of the structure download.
type RoleStructure struct {
	Timestamp string                        `json:"timestamp"`
	Roles     []schema.ObjectRoleDefinition `json:"roles"`
}
