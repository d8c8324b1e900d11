package letter

import (
	"bytes"
	"testing"

	"campusdata/console/schema"

	"github.com/stretchr/testify/assert"
)

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Sehr geehrte Frau Dr. Schmidt,", Greeting(schema.PlatformUser{
		Salutation: "Frau", Title: "Dr.", Firstname: "Anna", Lastname: "Schmidt",
	}))

	assert.Equal(t, "Sehr geehrter Herr Maier,", Greeting(schema.PlatformUser{
		Salutation: "Herr", Firstname: "Bernd", Lastname: "Maier",
	}))

	assert.Equal(t, "Guten Tag Kim Neumann,", Greeting(schema.PlatformUser{
		Firstname: "Kim", Lastname: "Neumann",
	}))
}

func TestAddressForm(t *testing.T) {
	assert.Equal(t, "Herrn", AddressForm("Herr"))
	assert.Equal(t, "Frau", AddressForm("Frau"))
	assert.Equal(t, "", AddressForm(""))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Zugang_Schmidt.pdf", Filename(schema.PlatformUser{Lastname: "Schmidt"}))
}

func TestGenerateProducesPdf(t *testing.T) {
	user := schema.PlatformUser{
		Salutation:  "Frau",
		Firstname:   "Anna",
		Lastname:    "Schmidt",
		Login:       "aschmidt",
		Password:    "geheim123",
		Institution: "Fachakademie",
		Street:      "Hauptstraße 1",
		PostalCode:  "39104",
		City:        "Magdeburg",
	}

	data, err := Generate(user, nil)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestGenerateRejectsUnknownImageFormat(t *testing.T) {
	_, err := Generate(schema.PlatformUser{Lastname: "Schmidt"}, []byte("definitely not an image"))
	assert.Error(t, err)
}

func TestRecipientLinesSkipEmptyFields(t *testing.T) {
	lines := recipientLines(schema.PlatformUser{
		Salutation: "Herr",
		Firstname:  "Bernd",
		Lastname:   "Maier",
		City:       "Berlin",
	})

	assert.Equal(t, []string{"Herrn", "Bernd Maier", " Berlin"}, lines)
}
