package web

import (
	"frecks-web/internal/domain"
	"frecks-web/internal/session"
)

const (
	signInPath           = "/auth/signin"
	userDashboardPath    = "/dashboard/user"
	creatorDashboardPath = "/dashboard/creator"
)

// dashboardRedirect decides where a dashboard request belongs. wait is true
// while the session is still loading; an empty target means stay on current.
func dashboardRedirect(st session.State, current string) (target string, wait bool) {
	if st.Loading {
		return "", true
	}

	dest := userDashboardPath
	switch {
	case st.Identity == nil:
		dest = signInPath
	case st.Profile != nil && st.Profile.Role == domain.RoleCreator:
		dest = creatorDashboardPath
	}

	if dest == current {
		return "", false
	}
	return dest, false
}
