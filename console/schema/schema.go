package schema

// AppRole is the role of a console session, not of a platform user.
type AppRole string

const (
	RoleMaster AppRole = "MASTER"
	RoleEditor AppRole = "EDITOR"
)

// UserRole is the global role assigned to a platform user record.
type UserRole string

const (
	GlobalAdmin UserRole = "Administrator"
	GlobalUser  UserRole = "User"
	GlobalGuest UserRole = "Guest"
)

type AuthMode string

const (
	AuthDefault AuthMode = "default"
	AuthOidc    AuthMode = "oidc"
)

// PlatformUser is a roster record. Field names on the wire match the
// historical backup format, so renaming a json tag breaks old backups.
// Login/Password are display data for welcome letters; they are not used
// to authenticate into the console itself.
type PlatformUser struct {
	Id         string   `json:"id"`
	Active     bool     `json:"active"`
	GlobalRole UserRole `json:"globalRole"`

	// LocalRoleIds reference ObjectRoleDefinition ids. References are
	// advisory: deleting a role definition leaves them dangling.
	LocalRoleIds []string `json:"localRoleIds"`
	Category     string   `json:"category"`

	ExternalAccount string `json:"externalAccount"`
	Login           string `json:"login"`
	Password        string `json:"password"`
	Language        string `json:"language"`

	Salutation  string `json:"salutation"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Title       string `json:"title"`
	Birthday    string `json:"birthday"`
	Email       string `json:"email"`
	Institution string `json:"institution"`
	Department  string `json:"department"`

	Street       string `json:"street"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	CountryIso   string `json:"countryIso"`
	CountryPlain string `json:"countryPlain"`

	Phone       string `json:"phone"`
	PhoneOffice string `json:"phoneOffice"`
	Mobile      string `json:"mobile"`
	Fax         string `json:"fax"`

	Hobby         string `json:"hobby"`
	Comment       string `json:"comment"`
	Matriculation string `json:"matriculation"`

	Udf1 string `json:"udf1"`
	Udf2 string `json:"udf2"`
	Udf3 string `json:"udf3"`
	Udf4 string `json:"udf4"`
	Udf5 string `json:"udf5"`

	UnlimitedAccess    bool   `json:"unlimitedAccess"`
	LimitedAccessFrom  string `json:"limitedAccessFrom,omitempty"`
	LimitedAccessUntil string `json:"limitedAccessUntil,omitempty"`

	SkinId   string   `json:"skinId"`
	AuthMode AuthMode `json:"authMode"`
}

// AppEditor is a console operator account with editor privileges. The
// json tag is historical: the stored value is a plaintext password.
type AppEditor struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"passwordHash"`
	Active   bool   `json:"active"`
}

// ObjectRoleDefinition is a (course/object, role-within-object) pair that
// can be assigned to users via LocalRoleIds.
type ObjectRoleDefinition struct {
	Id         string `json:"id"`
	ObjectName string `json:"objectName"`
	ObjectKey  string `json:"objectKey"`
	RoleName   string `json:"roleName"`
	RoleKey    string `json:"roleKey"`
}

type CategoryDefinition struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FieldVisibilityConfig controls which field groups the edit form renders.
// There is exactly one instance, process wide.
type FieldVisibilityConfig struct {
	ShowSystemFields        bool `json:"showSystemFields"`
	ShowPersonalFields      bool `json:"showPersonalFields"`
	ShowAddressFields       bool `json:"showAddressFields"`
	ShowCommunicationFields bool `json:"showCommunicationFields"`
	ShowUdfFields           bool `json:"showUdfFields"`
	ShowRolesFields         bool `json:"showRolesFields"`
}

// DefaultVisibility is the configuration used until an operator changes it:
// every field group visible.
func DefaultVisibility() FieldVisibilityConfig {
	return FieldVisibilityConfig{
		ShowSystemFields:        true,
		ShowPersonalFields:      true,
		ShowAddressFields:       true,
		ShowCommunicationFields: true,
		ShowUdfFields:           true,
		ShowRolesFields:         true,
	}
}

type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
)

// AuditLogEntry is an immutable record of one mutating action. Entries are
// never edited after creation.
type AuditLogEntry struct {
	Id             string      `json:"id"`
	Timestamp      string      `json:"timestamp"`
	EditorUsername string      `json:"editorUsername"`
	TargetUserId   string      `json:"targetUserId"`
	Action         AuditAction `json:"action"`
	Details        string      `json:"details"`
}

// MasterCredentials overrides the built-in master login when set via the
// profile flow. The json tag is historical: the value is plaintext.
type MasterCredentials struct {
	Username string `json:"username"`
	Password string `json:"passwordHash"`
}

// Session identifies the acting operator. It is never persisted; a session
// lives only as long as its token.
type Session struct {
	Role     AppRole `json:"role"`
	Username string  `json:"username"`
}
