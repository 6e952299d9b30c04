package nav

import (
	"strings"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/samber/lo"
)

// FilterUsers keeps the users whose username contains query, ignoring case,
// minus the user with selfID. An empty query matches nobody.
func FilterUsers(users []api.UserProfile, query string, selfID int64) []api.UserProfile {
	if query == "" {
		return nil
	}

	query = strings.ToLower(query)
	return lo.Filter(users, func(user api.UserProfile, _ int) bool {
		return user.ID != selfID && strings.Contains(strings.ToLower(user.Username), query)
	})
}
