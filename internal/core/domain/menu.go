package domain

// MenuEntry is a single navigation link.
type MenuEntry struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var (
	menuHome        = MenuEntry{Label: "Home", Path: "/"}
	menuProfile     = MenuEntry{Label: "Profile", Path: "/user/profile"}
	menuUserList    = MenuEntry{Label: "User list", Path: "/user/list"}
	menuResume      = MenuEntry{Label: "Your resume", Path: "/resume"}
	menuResumeList  = MenuEntry{Label: "Resume list", Path: "/resume/list"}
	menuStatistics  = MenuEntry{Label: "Statistics", Path: "/resume/statistics"}
	menuTeamList    = MenuEntry{Label: "Team list", Path: "/team/list"}
	menuCreateTeam  = MenuEntry{Label: "Create team", Path: "/team"}
	menuChatList    = MenuEntry{Label: "Chat list", Path: "/chat/list"}
	menuTechSupport = MenuEntry{Label: "Technical support", Path: "/chat/tech"}
)

// MenuFor computes the navigation menu for a session. It is a pure, total
// function of the session's role: anonymous callers (and unknown roles) see
// only the home entry.
func MenuFor(s Session) []MenuEntry {
	switch s.Role() {
	case RoleAdministrator:
		return []MenuEntry{menuHome, menuProfile, menuUserList, menuResumeList, menuStatistics, menuTeamList, menuChatList}
	case RoleEmployer:
		return []MenuEntry{menuHome, menuProfile, menuResumeList, menuStatistics, menuTeamList, menuCreateTeam, menuTechSupport}
	case RoleApplicant:
		return []MenuEntry{menuHome, menuProfile, menuResume, menuResumeList, menuStatistics, menuTechSupport}
	default:
		return []MenuEntry{menuHome}
	}
}
