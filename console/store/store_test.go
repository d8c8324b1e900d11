package store

import (
	"testing"

	"campusdata/console/schema"
	"campusdata/console/storage"

	"github.com/stretchr/testify/assert"
)

type memBlobs struct {
	data map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: make(map[string][]byte)}
}

func (m *memBlobs) Get(key string) ([]byte, error) {
	value, ok := m.data[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return value, nil
}

func (m *memBlobs) Put(key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memBlobs) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func TestPersistenceRoundTrip(t *testing.T) {
	blobs := newMemBlobs()

	s := New(blobs)
	s.Load()

	user, err := s.CreateUser("master", schema.PlatformUser{Login: "anna", Password: "pwd", Lastname: "Schmidt"})
	assert.NoError(t, err)

	s.CreateEditor(schema.AppEditor{Username: "redakteur", Password: "geheim"})
	s.CreateCategory(schema.CategoryDefinition{Name: "Jahrgang 2026"})
	s.ReplaceRoleDefinitions("master", []schema.ObjectRoleDefinition{
		{Id: "r1", ObjectName: "Kurs A", RoleName: "Teilnehmer"},
	})

	visibility := schema.DefaultVisibility()
	visibility.ShowUdfFields = false
	s.SetVisibility(visibility)

	reloaded := New(blobs)
	reloaded.Load()

	assert.Equal(t, s.Users(), reloaded.Users())
	assert.Equal(t, s.Editors(), reloaded.Editors())
	assert.Equal(t, s.RoleDefinitions(), reloaded.RoleDefinitions())
	assert.Equal(t, s.Categories(), reloaded.Categories())
	assert.Equal(t, s.Visibility(), reloaded.Visibility())
	assert.Equal(t, s.AuditLogs(), reloaded.AuditLogs())

	got, err := reloaded.GetUser(user.Id)
	assert.NoError(t, err)
	assert.Equal(t, "anna", got.Login)
}

func TestMasterCredsPersistedOnlyWhenSet(t *testing.T) {
	blobs := newMemBlobs()

	s := New(blobs)
	s.Load()
	s.CreateCategory(schema.CategoryDefinition{Name: "irgendwas"})

	_, ok := blobs.data[storage.KeyMasterCreds]
	assert.False(t, ok)
	assert.Nil(t, s.MasterCredentials())

	s.SetMasterCredentials("chef", "neu123")

	_, ok = blobs.data[storage.KeyMasterCreds]
	assert.True(t, ok)

	reloaded := New(blobs)
	reloaded.Load()
	creds := reloaded.MasterCredentials()
	assert.NotNil(t, creds)
	assert.Equal(t, "chef", creds.Username)
}

func TestLoadIsolatesCorruptKeys(t *testing.T) {
	blobs := newMemBlobs()

	s := New(blobs)
	if _, err := s.CreateUser("", schema.PlatformUser{Login: "bleibt", Password: "pwd"}); err != nil {
		t.Fatal(err)
	}

	blobs.data[storage.KeyCategories] = []byte("not json")

	reloaded := New(blobs)
	reloaded.Load()

	assert.Len(t, reloaded.Users(), 1)
	assert.Empty(t, reloaded.Categories())
	assert.Equal(t, schema.DefaultVisibility(), reloaded.Visibility())
}

func TestCreateUserAssignsIdAndPrepends(t *testing.T) {
	s := New(newMemBlobs())

	first, err := s.CreateUser("master", schema.PlatformUser{Login: "erste", Password: "pwd"})
	assert.NoError(t, err)
	assert.NotEmpty(t, first.Id)

	second, err := s.CreateUser("master", schema.PlatformUser{Id: "ignored", Login: "zweite", Password: "pwd"})
	assert.NoError(t, err)
	assert.NotEqual(t, "ignored", second.Id)

	users := s.Users()
	assert.Len(t, users, 2)
	assert.Equal(t, "zweite", users[0].Login)
	assert.Equal(t, "erste", users[1].Login)
}

func TestDeleteUsersIgnoresUnknownIds(t *testing.T) {
	s := New(newMemBlobs())

	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		user, err := s.CreateUser("master", schema.PlatformUser{Login: "nutzer", Password: "pwd"})
		assert.NoError(t, err)
		ids = append(ids, user.Id)
	}

	removed := s.DeleteUsers("master", []string{ids[0], ids[5], "unknown"})
	assert.Equal(t, 2, removed)
	assert.Len(t, s.Users(), 8)
}

func TestAuditRecordFallsBackToSystemActor(t *testing.T) {
	s := New(newMemBlobs())

	_, err := s.CreateUser("", schema.PlatformUser{Login: "anonym", Password: "pwd"})
	assert.NoError(t, err)

	logs := s.AuditLogs()
	assert.Len(t, logs, 1)
	assert.Equal(t, SystemActor, logs[0].EditorUsername)
	assert.Equal(t, "Nutzer anonym angelegt.", logs[0].Details)
}

func TestUpdateEditorProfile(t *testing.T) {
	s := New(newMemBlobs())

	s.CreateEditor(schema.AppEditor{Username: "alt", Password: "geheim"})

	assert.NoError(t, s.UpdateEditorProfile("alt", "neu", ""))

	editors := s.Editors()
	assert.Len(t, editors, 1)
	assert.Equal(t, "neu", editors[0].Username)
	assert.Equal(t, "geheim", editors[0].Password)

	assert.NoError(t, s.UpdateEditorProfile("neu", "neu", "anders"))
	assert.Equal(t, "anders", s.Editors()[0].Password)

	assert.ErrorIs(t, s.UpdateEditorProfile("fehlt", "x", "y"), schema.ErrEditorNotFound)
}
