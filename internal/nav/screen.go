package nav

import "fmt"

type Screen int

const (
	ScreenAuth Screen = iota
	ScreenRegister
	ScreenChats
	ScreenChat
	// ScreenContacts and ScreenGroups are kept for value compatibility only.
	// No view renders them and no trigger leads to them.
	ScreenContacts
	ScreenGroups
	ScreenProfile
	ScreenSearch
	ScreenSettings
)

var screenNames = [...]string{
	ScreenAuth:     "auth",
	ScreenRegister: "register",
	ScreenChats:    "chats",
	ScreenChat:     "chat",
	ScreenContacts: "contacts",
	ScreenGroups:   "groups",
	ScreenProfile:  "profile",
	ScreenSearch:   "search",
	ScreenSettings: "settings",
}

func (s Screen) String() string {
	if s < 0 || int(s) >= len(screenNames) {
		return fmt.Sprintf("Screen(%d)", int(s))
	}
	return screenNames[s]
}

// Anonymous reports whether the screen may be shown without a session.
func (s Screen) Anonymous() bool {
	return s == ScreenAuth || s == ScreenRegister
}
