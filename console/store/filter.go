package store

import (
	"fmt"
	"strings"

	"campusdata/console/schema"
)

// FilterUsers returns the users whose searchable fields contain query,
// case-insensitively. An empty query returns all users in store order. The
// function is pure: it never reorders or mutates its input.
func FilterUsers(users []schema.PlatformUser, query string) []schema.PlatformUser {
	if query == "" {
		return users
	}

	needle := strings.ToLower(query)

	matched := make([]schema.PlatformUser, 0, len(users))
	for _, user := range users {
		haystack := fmt.Sprintf(
			"%v %v %v %v %v", user.Firstname, user.Lastname, user.Login, user.Institution, user.City,
		)
		if strings.Contains(strings.ToLower(haystack), needle) {
			matched = append(matched, user)
		}
	}
	return matched
}
