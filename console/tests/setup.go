package tests

import (
	"bytes"
	"testing"

	"campusdata/console/auth"
	"campusdata/console/schema"
	"campusdata/console/services"
	"campusdata/console/storage"
	"campusdata/console/store"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	console services.Console
	store   *store.Store
	api     chi.Router
}

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	if err := storage.Migrate(db); err != nil {
		t.Fatal(err)
	}

	st := store.New(storage.NewGormBlobs(db))
	st.Load()

	secret := []byte("290zcv02ai249")

	console := services.NewConsole(st, secret, new(bytes.Buffer))

	return &testEnv{console: console, store: st, api: console.Routes()}
}

func (t *testEnv) newClient() client {
	return client{api: t.api}
}

func (t *testEnv) masterClient() (client, error) {
	c := t.newClient()
	err := c.login(loginInfo{
		Role:     string(schema.RoleMaster),
		Username: auth.DefaultMasterUsername,
		Password: auth.DefaultMasterPassword,
	})
	return c, err
}

func (t *testEnv) newEditor(username, password string) (client, error) {
	t.store.CreateEditor(schema.AppEditor{Username: username, Password: password, Active: true})

	c := t.newClient()
	err := c.login(loginInfo{Role: string(schema.RoleEditor), Username: username, Password: password})
	return c, err
}
