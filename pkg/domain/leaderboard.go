package domain

import "sort"

// LeaderboardUser is one entry of a leaderboard group.
type LeaderboardUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Name returns the display name, falling back to the username.
func (u LeaderboardUser) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// LeaderboardGroup buckets the users who drew the same fortune today.
type LeaderboardGroup struct {
	Fortune Fortune           `json:"fortune"`
	Users   []LeaderboardUser `json:"users"`
}

// SortGroups orders groups from the highest fortune to the lowest.
// Unknown labels sort last.
func SortGroups(groups []LeaderboardGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Fortune.Level() > groups[j].Fortune.Level()
	})
}
