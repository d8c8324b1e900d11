package schema

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEditorNotFound   = errors.New("editor not found")
	ErrRoleNotFound     = errors.New("role definition not found")
	ErrCategoryNotFound = errors.New("category not found")
)

func CheckValidAppRole(role AppRole) error {
	switch role {
	case RoleMaster, RoleEditor:
		return nil
	}
	return fmt.Errorf("invalid app role '%v', must be one of MASTER, EDITOR", role)
}

func CheckValidGlobalRole(role UserRole) error {
	switch role {
	case GlobalAdmin, GlobalUser, GlobalGuest, "":
		return nil
	}
	return fmt.Errorf("invalid global role '%v', must be one of Administrator, User, Guest", role)
}

func CheckValidAuthMode(mode AuthMode) error {
	switch mode {
	case AuthDefault, AuthOidc, "":
		return nil
	}
	return fmt.Errorf("invalid auth mode '%v', must be one of default, oidc", mode)
}

// CheckValidUser validates the enumerated fields of a user record at the
// store boundary. Free-text fields are accepted as-is.
func CheckValidUser(user *PlatformUser) error {
	if err := CheckValidGlobalRole(user.GlobalRole); err != nil {
		return err
	}
	if err := CheckValidAuthMode(user.AuthMode); err != nil {
		return err
	}
	return nil
}
