// Package store owns all persisted console state. The UI layer never holds
// data of its own: every read and mutation goes through a Store, and every
// successful mutation is mirrored to durable storage before returning.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"campusdata/console/schema"
	"campusdata/console/storage"

	"github.com/google/uuid"
)

// SystemActor attributes mutations that happen without a session context.
const SystemActor = "SYSTEM"

// maxAuditEntries caps the audit trail; the oldest entries are dropped first.
const maxAuditEntries = 1000

// Store holds the six collections plus the optional master credential
// override. The single mutex serializes mutations; there are no transactions
// and no rollback, writes to durable storage are last-writer-wins.
type Store struct {
	mu    sync.RWMutex
	blobs storage.Blobs

	users      []schema.PlatformUser
	editors    []schema.AppEditor
	roles      []schema.ObjectRoleDefinition
	categories []schema.CategoryDefinition
	visibility schema.FieldVisibilityConfig
	auditLogs  []schema.AuditLogEntry

	masterCreds *schema.MasterCredentials
}

func New(blobs storage.Blobs) *Store {
	return &Store{
		blobs:      blobs,
		visibility: schema.DefaultVisibility(),
	}
}

// Load restores every collection from durable storage. Each key is loaded
// independently: a missing or unparsable blob falls back to that key's empty
// default and never prevents the remaining keys from loading.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	loadKey(s.blobs, storage.KeyUsers, &s.users)
	loadKey(s.blobs, storage.KeyEditors, &s.editors)
	loadKey(s.blobs, storage.KeyRoles, &s.roles)
	loadKey(s.blobs, storage.KeyCategories, &s.categories)
	loadKey(s.blobs, storage.KeyVisibility, &s.visibility)
	loadKey(s.blobs, storage.KeyAuditLogs, &s.auditLogs)
	loadKey(s.blobs, storage.KeyMasterCreds, &s.masterCreds)

	slog.Info("store loaded",
		"users", len(s.users),
		"editors", len(s.editors),
		"role_definitions", len(s.roles),
		"categories", len(s.categories),
		"audit_logs", len(s.auditLogs),
		"custom_master_creds", s.masterCreds != nil,
	)
}

func loadKey[T any](blobs storage.Blobs, key string, dest *T) {
	data, err := blobs.Get(key)
	if err != nil {
		if err != storage.ErrKeyNotFound {
			slog.Warn("unable to read storage key, using default", "key", key, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("unable to parse storage key, using default", "key", key, "error", err)
	}
}

// persistLocked mirrors the full state back to durable storage. Writes are
// fire-and-forget: a failed write is logged but does not fail the mutation
// that triggered it.
func (s *Store) persistLocked() {
	persistKey(s.blobs, storage.KeyUsers, s.users)
	persistKey(s.blobs, storage.KeyEditors, s.editors)
	persistKey(s.blobs, storage.KeyRoles, s.roles)
	persistKey(s.blobs, storage.KeyCategories, s.categories)
	persistKey(s.blobs, storage.KeyVisibility, s.visibility)
	persistKey(s.blobs, storage.KeyAuditLogs, s.auditLogs)
	if s.masterCreds != nil {
		persistKey(s.blobs, storage.KeyMasterCreds, s.masterCreds)
	}
}

func persistKey(blobs storage.Blobs, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("error encoding collection for storage", "key", key, "error", err)
		return
	}
	if err := blobs.Put(key, data); err != nil {
		slog.Error("error persisting collection", "key", key, "error", err)
	}
}

// recordLocked appends an audit entry for a mutating action. Recording is a
// side effect only, it can never fail the mutation it describes.
func (s *Store) recordLocked(actor string, action schema.AuditAction, targetId, details string) {
	if actor == "" {
		actor = SystemActor
	}
	entry := schema.AuditLogEntry{
		Id:             uuid.NewString(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		EditorUsername: actor,
		TargetUserId:   targetId,
		Action:         action,
		Details:        details,
	}
	s.auditLogs = append([]schema.AuditLogEntry{entry}, s.auditLogs...)
	if len(s.auditLogs) > maxAuditEntries {
		s.auditLogs = s.auditLogs[:maxAuditEntries]
	}
}

// --- Read access ---

func (s *Store) Users() []schema.PlatformUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// SearchUsers returns the users matching the free-text query, in store order.
func (s *Store) SearchUsers(query string) []schema.PlatformUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(FilterUsers(s.users, query))
}

func (s *Store) GetUser(id string) (schema.PlatformUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Id == id {
			return user, nil
		}
	}
	return schema.PlatformUser{}, schema.ErrUserNotFound
}

func (s *Store) Editors() []schema.AppEditor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.editors)
}

func (s *Store) RoleDefinitions() []schema.ObjectRoleDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles)
}

func (s *Store) Categories() []schema.CategoryDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *Store) Visibility() schema.FieldVisibilityConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibility
}

func (s *Store) AuditLogs() []schema.AuditLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.auditLogs)
}

// MasterCredentials returns the custom master credential override, or nil if
// the built-in default applies.
func (s *Store) MasterCredentials() *schema.MasterCredentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.masterCreds == nil {
		return nil
	}
	creds := *s.masterCreds
	return &creds
}

// --- User mutations ---

// CreateUser adds a new user record. A fresh id is assigned; any id supplied
// by the caller is ignored. New records are prepended so the most recently
// created user lists first.
func (s *Store) CreateUser(actor string, user schema.PlatformUser) (schema.PlatformUser, error) {
	if err := schema.CheckValidUser(&user); err != nil {
		return schema.PlatformUser{}, err
	}

	user.Id = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = append([]schema.PlatformUser{user}, s.users...)
	s.recordLocked(actor, schema.ActionCreate, user.Id, fmt.Sprintf("Nutzer %v angelegt.", user.Login))
	s.persistLocked()

	return user, nil
}

// UpdateUser replaces the record with the same id. The id itself is
// immutable once assigned.
func (s *Store) UpdateUser(actor string, user schema.PlatformUser) error {
	if err := schema.CheckValidUser(&user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.users, func(u schema.PlatformUser) bool { return u.Id == user.Id })
	if idx < 0 {
		return schema.ErrUserNotFound
	}

	s.users[idx] = user
	s.recordLocked(actor, schema.ActionUpdate, user.Id, fmt.Sprintf("Nutzer %v aktualisiert.", user.Login))
	s.persistLocked()

	return nil
}

// DeleteUsers removes the users with the given ids and returns how many were
// removed. Unknown ids are ignored; all other records keep their values.
func (s *Store) DeleteUsers(actor string, ids []string) int {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := make([]schema.PlatformUser, 0, len(s.users))
	removed := 0
	for _, user := range s.users {
		if !selected[user.Id] {
			remaining = append(remaining, user)
			continue
		}
		removed++
		s.recordLocked(actor, schema.ActionDelete, user.Id, fmt.Sprintf("Nutzer %v gelöscht.", user.Login))
	}

	if removed > 0 {
		s.users = remaining
		s.persistLocked()
	}

	return removed
}

// --- Editor mutations ---

func (s *Store) CreateEditor(editor schema.AppEditor) schema.AppEditor {
	editor.Id = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.editors = append(s.editors, editor)
	s.persistLocked()

	return editor
}

func (s *Store) UpdateEditor(editor schema.AppEditor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.editors, func(e schema.AppEditor) bool { return e.Id == editor.Id })
	if idx < 0 {
		return schema.ErrEditorNotFound
	}

	s.editors[idx] = editor
	s.persistLocked()
	return nil
}

func (s *Store) DeleteEditor(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.editors, func(e schema.AppEditor) bool { return e.Id == id })
	if idx < 0 {
		return schema.ErrEditorNotFound
	}

	s.editors = slices.Delete(s.editors, idx, idx+1)
	s.persistLocked()
	return nil
}

// UpdateEditorProfile renames the editor currently logged in as username and
// optionally replaces its password. An empty newPassword keeps the old one.
func (s *Store) UpdateEditorProfile(username, newUsername, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.editors, func(e schema.AppEditor) bool { return e.Username == username })
	if idx < 0 {
		return schema.ErrEditorNotFound
	}

	s.editors[idx].Username = newUsername
	if newPassword != "" {
		s.editors[idx].Password = newPassword
	}
	s.persistLocked()
	return nil
}

// SetMasterCredentials installs the master credential override.
func (s *Store) SetMasterCredentials(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.masterCreds = &schema.MasterCredentials{Username: username, Password: password}
	s.persistLocked()
}

// --- Role definition mutations ---

func (s *Store) CreateRoleDefinition(role schema.ObjectRoleDefinition) schema.ObjectRoleDefinition {
	role.Id = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles = append(s.roles, role)
	s.persistLocked()

	return role
}

func (s *Store) UpdateRoleDefinition(role schema.ObjectRoleDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.roles, func(r schema.ObjectRoleDefinition) bool { return r.Id == role.Id })
	if idx < 0 {
		return schema.ErrRoleNotFound
	}

	s.roles[idx] = role
	s.persistLocked()
	return nil
}

// DeleteRoleDefinition removes a role definition. Users referencing it keep
// their dangling localRoleIds; there is no cascade.
func (s *Store) DeleteRoleDefinition(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.roles, func(r schema.ObjectRoleDefinition) bool { return r.Id == id })
	if idx < 0 {
		return schema.ErrRoleNotFound
	}

	s.roles = slices.Delete(s.roles, idx, idx+1)
	s.persistLocked()
	return nil
}

// ReplaceRoleDefinitions overwrites the whole role definition collection,
// the bulk path used by the structure import.
func (s *Store) ReplaceRoleDefinitions(actor string, roles []schema.ObjectRoleDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles = slices.Clone(roles)
	s.recordLocked(actor, schema.ActionUpdate, SystemActor,
		fmt.Sprintf("Kurs-Struktur importiert (%d Rollen).", len(roles)))
	s.persistLocked()
}

// --- Category mutations ---

func (s *Store) CreateCategory(category schema.CategoryDefinition) schema.CategoryDefinition {
	category.Id = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = append(s.categories, category)
	s.persistLocked()

	return category
}

func (s *Store) UpdateCategory(category schema.CategoryDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.categories, func(c schema.CategoryDefinition) bool { return c.Id == category.Id })
	if idx < 0 {
		return schema.ErrCategoryNotFound
	}

	s.categories[idx] = category
	s.persistLocked()
	return nil
}

func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.categories, func(c schema.CategoryDefinition) bool { return c.Id == id })
	if idx < 0 {
		return schema.ErrCategoryNotFound
	}

	s.categories = slices.Delete(s.categories, idx, idx+1)
	s.persistLocked()
	return nil
}

// --- Config mutations ---

func (s *Store) SetVisibility(config schema.FieldVisibilityConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visibility = config
	s.persistLocked()
}
