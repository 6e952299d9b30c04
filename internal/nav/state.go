package nav

import "github.com/JRI98/maxogram/internal/api"

// View is the screen-scoped part of the state. Exactly one view is active;
// replacing it discards whatever buffers the previous screen held.
type View interface {
	Screen() Screen
}

type AuthView struct {
	Submitting bool
}

type RegisterView struct {
	Submitting bool
}

type ChatsView struct{}

type ChatView struct {
	PartnerID int64
	Messages  []api.Message
	Draft     string
	Sending   bool
	Recording Recording
}

type SearchView struct {
	Query string
}

type ProfileView struct{}

type SettingsView struct {
	Submitting bool
}

func (AuthView) Screen() Screen     { return ScreenAuth }
func (RegisterView) Screen() Screen { return ScreenRegister }
func (ChatsView) Screen() Screen    { return ScreenChats }
func (ChatView) Screen() Screen     { return ScreenChat }
func (SearchView) Screen() Screen   { return ScreenSearch }
func (ProfileView) Screen() Screen  { return ScreenProfile }
func (SettingsView) Screen() Screen { return ScreenSettings }

// Recording tracks the voice recording of a chat view. Pending covers the
// time between asking for the microphone and getting it, Finalizing the time
// between stop and the encoded audio being available.
type Recording struct {
	Pending    bool
	Active     bool
	Finalizing bool
	Elapsed    int
}

func (r Recording) Busy() bool {
	return r.Pending || r.Active || r.Finalizing
}

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeValidation
	NoticeService
	NoticeTransport
)

type Notice struct {
	Kind NoticeKind
	Text string
}

type State struct {
	User      *api.UserProfile
	View      View
	Epoch     uint64
	Chats     []api.ChatSummary
	Directory []api.UserProfile
	Notice    *Notice
}

func Initial() State {
	return State{View: AuthView{}}
}

func (s State) Screen() Screen {
	if s.View == nil {
		return ScreenAuth
	}
	return s.View.Screen()
}

func (s State) LoggedIn() bool {
	return s.User != nil
}

// SearchResults returns the directory entries visible for the current query.
func (s State) SearchResults() []api.UserProfile {
	view, ok := s.View.(SearchView)
	if !ok || s.User == nil {
		return nil
	}
	return FilterUsers(s.Directory, view.Query, s.User.ID)
}

type Partner struct {
	ID             int64
	Username       string
	AvatarInitials string
	Online         bool
}

// Partner resolves the selected conversation partner from the last chat list
// or directory read. ok is false when the chat screen has nothing to show.
func (s State) Partner() (Partner, bool) {
	view, isChat := s.View.(ChatView)
	if !isChat || s.User == nil || view.PartnerID == 0 {
		return Partner{}, false
	}

	for _, chat := range s.Chats {
		if chat.ID == view.PartnerID {
			return Partner{ID: chat.ID, Username: chat.Username, AvatarInitials: chat.AvatarInitials, Online: chat.Online}, true
		}
	}

	for _, user := range s.Directory {
		if user.ID == view.PartnerID {
			return Partner{ID: user.ID, Username: user.Username, AvatarInitials: user.AvatarInitials, Online: user.Online}, true
		}
	}

	return Partner{ID: view.PartnerID}, true
}
