package auth

import (
	"errors"
	"log/slog"

	"campusdata/console/schema"
)

var ErrInvalidCredentials = errors.New("invalid login credentials")

// Built-in master credentials, active until a custom pair is stored.
const (
	DefaultMasterUsername = "master"
	DefaultMasterPassword = "master123"
)

// CredentialSource provides the accounts the gate checks logins against.
type CredentialSource interface {
	Editors() []schema.AppEditor

	// MasterCredentials returns the custom master override, or nil when the
	// built-in default applies.
	MasterCredentials() *schema.MasterCredentials
}

// Gate performs the role based login check in front of the console. Editors
// authenticate against the stored editor accounts, the master role against
// the built-in or overridden master pair.
type Gate struct {
	creds CredentialSource
}

func NewGate(creds CredentialSource) *Gate {
	return &Gate{creds: creds}
}

func (g *Gate) Authenticate(role schema.AppRole, username, password string) (schema.Session, error) {
	switch role {
	case schema.RoleMaster:
		expectedUsername, expectedPassword := DefaultMasterUsername, DefaultMasterPassword
		if custom := g.creds.MasterCredentials(); custom != nil {
			expectedUsername, expectedPassword = custom.Username, custom.Password
		}
		if username != expectedUsername || password != expectedPassword {
			return schema.Session{}, ErrInvalidCredentials
		}
		return schema.Session{Role: schema.RoleMaster, Username: username}, nil

	case schema.RoleEditor:
		for _, editor := range g.creds.Editors() {
			if editor.Active && editor.Username == username && editor.Password == password {
				return schema.Session{Role: schema.RoleEditor, Username: username}, nil
			}
		}
		return schema.Session{}, ErrInvalidCredentials

	default:
		slog.Error("login attempt with unknown role", "role", role)
		return schema.Session{}, ErrInvalidCredentials
	}
}
