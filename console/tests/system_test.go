package tests

import (
	"bytes"
	"testing"

	"campusdata/console/export"
	"campusdata/console/schema"
)

func TestBackupExportImport(t *testing.T) {
	env := setupTestEnv(t)

	master, err := env.masterClient()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := master.createUser(testUser("sicherung")); err != nil {
		t.Fatal(err)
	}

	var bundle export.Bundle
	if err := master.Get("/system/backup").Do(&bundle); err != nil {
		t.Fatal(err)
	}

	if bundle.Timestamp == "" || bundle.Users == nil || len(*bundle.Users) != 1 {
		t.Fatalf("unexpected backup contents: %+v", bundle)
	}

	// Wipe the roster, then restore from the backup.
	users, err := master.listUsers("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := master.bulkDelete([]string{users[0].Id}); err != nil {
		t.Fatal(err)
	}

	// Without confirm the import only reports what the bundle contains.
	var summary map[string]interface{}
	err = master.Post("/system/backup/import").Json(bundle).Do(&summary)
	if err != nil {
		t.Fatal(err)
	}
	if summary["requiresConfirm"] != true {
		t.Fatalf("expected confirmation summary, got %v", summary)
	}

	restored, err := master.listUsers("")
	if err != nil {
		t.Fatal(err)
	}
	if len(restored) != 0 {
		t.Fatal("unconfirmed import must not modify state")
	}

	if err := master.Post("/system/backup/import?confirm=true").Json(bundle).Do(nil); err != nil {
		t.Fatal(err)
	}

	restored, err = master.listUsers("")
	if err != nil {
		t.Fatal(err)
	}
	if len(restored) != 1 || restored[0].Login != "sicherung" {
		t.Fatalf("restore did not bring the user back: %v", restored)
	}
}

func TestBackupImportRejectsInvalidFile(t *testing.T) {
	env := setupTestEnv(t)

	master, err := env.masterClient()
	if err != nil {
		t.Fatal(err)
	}

	err = master.Post("/system/backup/import?confirm=true").
		Body(bytes.NewReader([]byte(`{"timestamp": "2024-01-01T00:00:00Z"}`))).Do(nil)
	if err == nil {
		t.Fatal("backup without users or roleDefinitions should be rejected")
	}

	err = master.Post("/system/backup/import?confirm=true").
		Body(bytes.NewReader([]byte(`not json`))).Do(nil)
	if err == nil {
		t.Fatal("malformed backup should be rejected")
	}
}

func TestRoleStructureImport(t *testing.T) {
	env := setupTestEnv(t)

	master, err := env.masterClient()
	if err != nil {
		t.Fatal(err)
	}

	structure := []byte(`{"roles": [
		{"id": "r1", "objectName": "Kurs A", "objectKey": "kurs_a", "roleName": "Teilnehmer", "roleKey": "tn"},
		{"id": "r2", "objectName": "Kurs A", "objectKey": "kurs_a", "roleName": "Dozent", "roleKey": "doz"}
	]}`)

	var res map[string]int
	if err := master.Post("/system/structure/import?confirm=true").Body(bytes.NewReader(structure)).Do(&res); err != nil {
		t.Fatal(err)
	}
	if res["imported"] != 2 {
		t.Fatalf("expected 2 imported roles, got %v", res)
	}

	var roles []schema.ObjectRoleDefinition
	if err := master.Get("/system/roles").Do(&roles); err != nil {
		t.Fatal(err)
	}
	if len(roles) != 2 || roles[0].ObjectName != "Kurs A" {
		t.Fatalf("unexpected roles after import: %v", roles)
	}

	// A full backup doubles as a structure source via its roleDefinitions key.
	backup := []byte(`{"roleDefinitions": [
		{"id": "r3", "objectName": "Kurs B", "objectKey": "kurs_b", "roleName": "Teilnehmer", "roleKey": "tn"}
	]}`)
	if err := master.Post("/system/structure/import?confirm=true").Body(bytes.NewReader(backup)).Do(&res); err != nil {
		t.Fatal(err)
	}
	if res["imported"] != 1 {
		t.Fatalf("expected 1 imported role, got %v", res)
	}

	if err := master.Get("/system/roles").Do(&roles); err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 {
		t.Fatal("structure import should replace existing roles")
	}

	err = master.Post("/system/structure/import?confirm=true").Body(bytes.NewReader([]byte(`{"other": 1}`))).Do(nil)
	if err == nil {
		t.Fatal("file without roles should be rejected")
	}
}

func TestStructureImportRequiresConfirmation(t *testing.T) {
	env := setupTestEnv(t)

	master, err := env.masterClient()
	if err != nil {
		t.Fatal(err)
	}

	seed := []byte(`{"roles": [
		{"id": "r1", "objectName": "Kurs A", "objectKey": "kurs_a", "roleName": "Teilnehmer", "roleKey": "tn"}
	]}`)
	if err := master.Post("/system/structure/import?confirm=true").Body(bytes.NewReader(seed)).Do(nil); err != nil {
		t.Fatal(err)
	}

	replacement := []byte(`{"roles": [
		{"id": "r2", "objectName": "Neu", "objectKey": "neu", "roleName": "Dozent", "roleKey": "doz"}
	]}`)

	// Without confirm the import only reports what the file contains.
	var summary map[string]interface{}
	if err := master.Post("/system/structure/import").Body(bytes.NewReader(replacement)).Do(&summary); err != nil {
		t.Fatal(err)
	}
	if summary["requiresConfirm"] != true || summary["roles"] != float64(1) {
		t.Fatalf("expected confirmation summary, got %v", summary)
	}

	var roles []schema.ObjectRoleDefinition
	if err := master.Get("/system/roles").Do(&roles); err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 || roles[0].ObjectName != "Kurs A" {
		t.Fatalf("unconfirmed structure import must not modify state, got %v", roles)
	}

	if err := master.Post("/system/structure/import?confirm=true").Body(bytes.NewReader(replacement)).Do(nil); err != nil {
		t.Fatal(err)
	}

	if err := master.Get("/system/roles").Do(&roles); err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 || roles[0].ObjectName != "Neu" {
		t.Fatalf("confirmed structure import should replace the collection, got %v", roles)
	}
}

func TestVisibilityConfig(t *testing.T) {
	env := setupTestEnv(t)

	master, err := env.masterClient()
	if err != nil {
		t.Fatal(err)
	}

	var visibility schema.FieldVisibilityConfig
	if err := master.Get("/system/visibility").Do(&visibility); err != nil {
		t.Fatal(err)
	}
	if visibility != schema.DefaultVisibility() {
		t.Fatalf("expected default visibility, got %+v", visibility)
	}

	visibility.ShowUdfFields = false
	if err := master.Put("/system/visibility").Json(visibility).Do(nil); err != nil {
		t.Fatal(err)
	}

	var updated schema.FieldVisibilityConfig
	if err := master.Get("/system/visibility").Do(&updated); err != nil {
		t.Fatal(err)
	}
	if updated.ShowUdfFields {
		t.Fatal("visibility update not applied")
	}
}

func TestCategoryCrud(t *testing.T) {
	env := setupTestEnv(t)

	master, err := env.masterClient()
	if err != nil {
		t.Fatal(err)
	}

	var category schema.CategoryDefinition
	err = master.Post("/system/categories").Json(schema.CategoryDefinition{Name: "Jahrgang 2026"}).Do(&category)
	if err != nil {
		t.Fatal(err)
	}
	if category.Id == "" {
		t.Fatal("category should get an id assigned")
	}

	category.Name = "Jahrgang 2027"
	if err := master.Put("/system/categories/" + category.Id).Json(category).Do(nil); err != nil {
		t.Fatal(err)
	}

	var categories []schema.CategoryDefinition
	if err := master.Get("/system/categories").Do(&categories); err != nil {
		t.Fatal(err)
	}
	if len(categories) != 1 || categories[0].Name != "Jahrgang 2027" {
		t.Fatalf("unexpected categories: %v", categories)
	}

	if err := master.Delete("/system/categories/" + category.Id).Do(nil); err != nil {
		t.Fatal(err)
	}
	if err := master.Delete("/system/categories/" + category.Id).Do(nil); err == nil {
		t.Fatal("deleting a missing category should fail")
	}
}

func TestEditorCrudAndProfile(t *testing.T) {
	env := setupTestEnv(t)

	master, err := env.masterClient()
	if err != nil {
		t.Fatal(err)
	}

	var editor schema.AppEditor
	err = master.Post("/system/editors").Json(schema.AppEditor{Username: "redakteur", Password: "geheim"}).Do(&editor)
	if err != nil {
		t.Fatal(err)
	}

	err = master.Post("/system/editors").Json(schema.AppEditor{Username: "", Password: ""}).Do(nil)
	if err == nil {
		t.Fatal("editor without credentials should be rejected")
	}

	editorClient := env.newClient()
	if err := editorClient.login(loginInfo{Role: "EDITOR", Username: "redakteur", Password: "geheim"}); err != nil {
		t.Fatal(err)
	}

	// Editors may change their own account but nothing else under /system.
	err = editorClient.Post("/system/profile").Json(map[string]string{"username": "lektor", "password": "neu"}).Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	fresh := env.newClient()
	if err := fresh.login(loginInfo{Role: "EDITOR", Username: "lektor", Password: "neu"}); err != nil {
		t.Fatal(err)
	}

	if err := master.Delete("/system/editors/" + editor.Id).Do(nil); err != nil {
		t.Fatal(err)
	}

	var editors []schema.AppEditor
	if err := master.Get("/system/editors").Do(&editors); err != nil {
		t.Fatal(err)
	}
	if len(editors) != 0 {
		t.Fatalf("expected no editors left, got %v", editors)
	}
}
