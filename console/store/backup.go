package store

import (
	"slices"
	"time"

	"campusdata/console/export"
	"campusdata/console/schema"
)

// ExportBundle snapshots the full state into a backup bundle. Every
// collection is included, even when empty.
func (s *Store) ExportBundle() export.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := slices.Clone(s.users)
	roles := slices.Clone(s.roles)
	editors := slices.Clone(s.editors)
	categories := slices.Clone(s.categories)
	visibility := s.visibility
	auditLogs := slices.Clone(s.auditLogs)

	bundle := export.Bundle{
		Users:            &users,
		RoleDefinitions:  &roles,
		Editors:          &editors,
		Categories:       &categories,
		VisibilityConfig: &visibility,
		AuditLogs:        &auditLogs,
	}
	if s.masterCreds != nil {
		creds := *s.masterCreds
		bundle.CustomMasterCreds = &creds
	}
	bundle.Stamp(time.Now())

	return bundle
}

// ImportBundle restores state from a backup. Only collections present in the
// bundle are overwritten; absent collections keep their current contents.
// The restore itself is recorded in the audit trail, which means an imported
// audit log immediately gains one entry describing the import.
func (s *Store) ImportBundle(actor string, bundle export.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bundle.Users != nil {
		s.users = slices.Clone(*bundle.Users)
	}
	if bundle.RoleDefinitions != nil {
		s.roles = slices.Clone(*bundle.RoleDefinitions)
	}
	if bundle.Editors != nil {
		s.editors = slices.Clone(*bundle.Editors)
	}
	if bundle.Categories != nil {
		s.categories = slices.Clone(*bundle.Categories)
	}
	if bundle.VisibilityConfig != nil {
		s.visibility = *bundle.VisibilityConfig
	}
	if bundle.AuditLogs != nil {
		s.auditLogs = slices.Clone(*bundle.AuditLogs)
	}
	if bundle.CustomMasterCreds != nil {
		creds := *bundle.CustomMasterCreds
		s.masterCreds = &creds
	}

	s.recordLocked(actor, schema.ActionUpdate, SystemActor, "Voll-Backup Import.")
	s.persistLocked()
}

// ExportRoleStructure snapshots the role definitions into the structure file
// format.
func (s *Store) ExportRoleStructure() export.RoleStructure {
	return export.RoleStructure{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Roles:     s.RoleDefinitions(),
	}
}
