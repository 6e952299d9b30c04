package nav

import (
	"errors"
	"strings"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/media"
	"github.com/JRI98/maxogram/internal/validate"
)

var (
	ErrRecordingBusy = errors.New("a voice message is already being recorded")
	ErrEmptyAudio    = errors.New("the recording is empty")
)

const (
	transportNotice = "Network error, please try again"
	captureNotice   = "Could not access the microphone"
)

// Transition applies t to s and returns the next state together with the
// effects the caller must perform. It never performs I/O.
func Transition(s State, t Trigger) (State, []Effect) {
	if s.View == nil {
		s.View = AuthView{}
	}

	switch t := t.(type) {
	case nil:
		return s, nil
	case DismissNotice:
		s.Notice = nil
		return s, nil
	case OperationFailed:
		return failed(s, t)
	case ChatsLoaded:
		if t.Epoch == s.Epoch && s.User != nil {
			s.Chats = t.Chats
		}
		return s, nil
	case DirectoryLoaded:
		if t.Epoch == s.Epoch && s.User != nil {
			s.Directory = t.Users
		}
		return s, nil
	case RecordingStarted:
		// The microphone arrived after the chat screen was left.
		if view, ok := s.View.(ChatView); !ok || s.User == nil || !view.Recording.Pending {
			return s, []Effect{AbortCapture{}}
		}
	}

	if s.User == nil {
		switch view := s.View.(type) {
		case AuthView:
			return onAuth(s, view, t)
		case RegisterView:
			return onRegister(s, view, t)
		default:
			// A view that needs a session lost it; fall back to sign in.
			return enter(s, AuthView{})
		}
	}

	switch t := t.(type) {
	case Refresh:
		return refresh(s)
	case Navigate:
		return navigate(s, t)
	case ProfileUpdated:
		return profileUpdated(s, t)
	}

	switch view := s.View.(type) {
	case ChatsView:
		return onChats(s, t)
	case ChatView:
		return onChat(s, view, t)
	case SearchView:
		return onSearch(s, view, t)
	case ProfileView:
		return onProfile(s, t)
	case SettingsView:
		return onSettings(s, view, t)
	default:
		return enter(s, ChatsView{})
	}
}

// enter makes view the active screen. Every entry starts a new epoch and
// re-runs the screen's loads.
func enter(s State, view View) (State, []Effect) {
	s.View = view
	s.Epoch++

	if s.User == nil {
		return s, nil
	}

	switch view := view.(type) {
	case ChatsView:
		return s, []Effect{LoadChats{UserID: s.User.ID, Epoch: s.Epoch}}
	case ChatView:
		if view.PartnerID == 0 {
			return s, nil
		}
		return s, []Effect{LoadMessages{UserID: s.User.ID, PartnerID: view.PartnerID, Epoch: s.Epoch}}
	case SearchView:
		if view.Query == "" {
			return s, []Effect{LoadDirectory{Epoch: s.Epoch}}
		}
	}

	return s, nil
}

// refresh re-enters the current screen. A send still in flight belongs to
// the previous epoch and will be ignored, so the chat stops waiting for it.
func refresh(s State) (State, []Effect) {
	if view, ok := s.View.(ChatView); ok {
		view.Sending = false
		return enter(s, view)
	}
	return enter(s, s.View)
}

func invalid(s State, err error) (State, []Effect) {
	s.Notice = &Notice{Kind: NoticeValidation, Text: err.Error()}
	return s, nil
}

func info(s State, text string) State {
	if text != "" {
		s.Notice = &Notice{Kind: NoticeInfo, Text: text}
	}
	return s
}

func signedIn(s State, user api.UserProfile) (State, []Effect) {
	s.User = &user
	s.Chats = nil
	s.Directory = nil
	return enter(s, ChatsView{})
}

func onAuth(s State, view AuthView, t Trigger) (State, []Effect) {
	switch t := t.(type) {
	case OpenRegister:
		if view.Submitting {
			return s, nil
		}
		return enter(s, RegisterView{})
	case SubmitLogin:
		if view.Submitting {
			return s, nil
		}
		if err := validate.Credentials(t.Username, t.Password); err != nil {
			return invalid(s, err)
		}
		view.Submitting = true
		s.View = view
		return s, []Effect{Login{Username: strings.TrimSpace(t.Username), Password: t.Password}}
	case AuthSucceeded:
		if !view.Submitting {
			return s, nil
		}
		return signedIn(s, t.User)
	case RequestRecoveryCode:
		if err := validate.NonEmpty(t.Username); err != nil {
			return invalid(s, err)
		}
		return s, []Effect{RequestRecovery{Username: strings.TrimSpace(t.Username)}}
	case ResetPassword:
		if err := validate.NonEmpty(t.Username, t.Code, t.NewPassword); err != nil {
			return invalid(s, err)
		}
		return s, []Effect{ConfirmRecovery{
			Username:    strings.TrimSpace(t.Username),
			Code:        strings.TrimSpace(t.Code),
			NewPassword: t.NewPassword,
		}}
	case RecoverySent:
		return info(s, t.Message), nil
	}

	return s, nil
}

func onRegister(s State, view RegisterView, t Trigger) (State, []Effect) {
	switch t := t.(type) {
	case Back:
		if view.Submitting {
			return s, nil
		}
		return enter(s, AuthView{})
	case SubmitRegister:
		if view.Submitting {
			return s, nil
		}
		username := strings.TrimSpace(t.Username)
		email := strings.TrimSpace(t.Email)
		if err := validate.Credentials(username, t.Password); err != nil {
			return invalid(s, err)
		}
		if err := validate.Username(username); err != nil {
			return invalid(s, err)
		}
		if err := validate.Email(email); err != nil {
			return invalid(s, err)
		}
		view.Submitting = true
		s.View = view
		return s, []Effect{Register{Username: username, Email: email, Password: t.Password}}
	case AuthSucceeded:
		if !view.Submitting {
			return s, nil
		}
		return signedIn(s, t.User)
	}

	return s, nil
}

// navigate switches between the top-level tabs.
func navigate(s State, t Navigate) (State, []Effect) {
	switch s.View.(type) {
	case ChatsView, SearchView, ProfileView:
	default:
		return s, nil
	}

	switch t.To {
	case ScreenChats:
		return enter(s, ChatsView{})
	case ScreenSearch:
		return enter(s, SearchView{})
	case ScreenProfile:
		return enter(s, ProfileView{})
	}

	return s, nil
}

func onChats(s State, t Trigger) (State, []Effect) {
	if t, ok := t.(SelectChat); ok {
		for _, chat := range s.Chats {
			if chat.ID == t.PartnerID {
				return enter(s, ChatView{PartnerID: t.PartnerID})
			}
		}
	}

	return s, nil
}

func onChat(s State, view ChatView, t Trigger) (State, []Effect) {
	switch t := t.(type) {
	case Back:
		var effects, entry []Effect
		if view.Recording.Busy() {
			effects = append(effects, AbortCapture{})
		}
		s, entry = enter(s, ChatsView{})
		return s, append(effects, entry...)

	case MessagesLoaded:
		if t.Epoch == s.Epoch {
			view.Messages = t.Messages
			s.View = view
		}
		return s, nil

	case EditDraft:
		view.Draft = t.Text
		s.View = view
		return s, nil

	case SendText:
		text := strings.TrimSpace(view.Draft)
		if text == "" || view.PartnerID == 0 || view.Sending {
			return s, nil
		}
		view.Sending = true
		s.View = view
		return s, []Effect{SendTextMessage{SenderID: s.User.ID, ReceiverID: view.PartnerID, Text: text, Epoch: s.Epoch}}

	case MessageSent:
		if t.Epoch != s.Epoch {
			return s, nil
		}
		if !t.Voice {
			view.Draft = ""
			view.Sending = false
		}
		s.View = view
		return s, []Effect{
			LoadMessages{UserID: s.User.ID, PartnerID: view.PartnerID, Epoch: s.Epoch},
			LoadChats{UserID: s.User.ID, Epoch: s.Epoch},
		}

	case StartRecording:
		if view.PartnerID == 0 {
			return s, nil
		}
		if view.Recording.Busy() {
			return invalid(s, ErrRecordingBusy)
		}
		view.Recording = Recording{Pending: true}
		s.View = view
		return s, []Effect{StartCapture{}}

	case RecordingStarted:
		if !view.Recording.Pending {
			return s, []Effect{AbortCapture{}}
		}
		view.Recording = Recording{Active: true}
		s.View = view
		return s, []Effect{AwaitTick{}}

	case RecordingTick:
		if !view.Recording.Active {
			return s, nil
		}
		view.Recording.Elapsed++
		s.View = view
		return s, []Effect{AwaitTick{}}

	case StopRecording:
		if !view.Recording.Active {
			return s, nil
		}
		view.Recording.Active = false
		view.Recording.Finalizing = true
		s.View = view
		return s, []Effect{StopCapture{}}

	case AudioCaptured:
		if !view.Recording.Finalizing {
			return s, nil
		}
		duration := view.Recording.Elapsed
		view.Recording = Recording{}
		s.View = view
		if len(t.Audio) == 0 {
			return invalid(s, ErrEmptyAudio)
		}
		return s, []Effect{SendVoiceMessage{
			SenderID:   s.User.ID,
			ReceiverID: view.PartnerID,
			Audio:      t.Audio,
			Duration:   duration,
			Epoch:      s.Epoch,
		}}

	case CaptureFailed:
		if !view.Recording.Busy() {
			return s, nil
		}
		view.Recording = Recording{}
		s.View = view
		s.Notice = &Notice{Kind: NoticeTransport, Text: captureNotice}
		return s, []Effect{AbortCapture{}}
	}

	return s, nil
}

func onSearch(s State, view SearchView, t Trigger) (State, []Effect) {
	switch t := t.(type) {
	case EditQuery:
		view.Query = t.Query
		s.View = view
		return s, nil
	case SelectResult:
		if t.UserID == s.User.ID {
			return s, nil
		}
		for _, user := range s.SearchResults() {
			if user.ID == t.UserID {
				return enter(s, ChatView{PartnerID: t.UserID})
			}
		}
	}

	return s, nil
}

func onProfile(s State, t Trigger) (State, []Effect) {
	switch t.(type) {
	case Logout:
		s.User = nil
		s.Chats = nil
		s.Directory = nil
		return enter(s, AuthView{})
	case OpenSettings:
		return enter(s, SettingsView{})
	}

	return s, nil
}

func onSettings(s State, view SettingsView, t Trigger) (State, []Effect) {
	switch t := t.(type) {
	case Back:
		return enter(s, ProfileView{})
	case SaveSettings:
		if view.Submitting {
			return s, nil
		}
		request, err := profileChanges(*s.User, t)
		if err != nil {
			return invalid(s, err)
		}
		view.Submitting = true
		s.View = view
		return s, []Effect{UpdateProfile{Request: request}}
	}

	return s, nil
}

// profileUpdated stores the server's copy of the profile even when the
// settings screen was left while the update was in flight.
func profileUpdated(s State, t ProfileUpdated) (State, []Effect) {
	if t.User.ID != s.User.ID {
		return s, nil
	}

	user := t.User
	s.User = &user

	var effects []Effect
	if _, ok := s.View.(SettingsView); ok {
		s, effects = enter(s, ProfileView{})
	}
	return info(s, t.Message), effects
}

// profileChanges builds an update request holding only the fields that
// differ from the current profile. An unchanged username is left out so the
// server does not apply its change cooldown.
func profileChanges(user api.UserProfile, form SaveSettings) (api.UpdateProfileRequest, error) {
	request := api.UpdateProfileRequest{Action: api.ActionUpdateProfile, UserID: user.ID}

	username := strings.TrimSpace(form.Username)
	if username != "" && username != user.Username {
		if err := validate.Username(username); err != nil {
			return api.UpdateProfileRequest{}, err
		}
		request.NewUsername = &username
	}

	if form.Avatar != nil {
		if err := media.CheckAvatar(form.Avatar); err != nil {
			return api.UpdateProfileRequest{}, err
		}
		avatarURL := media.DataURL(form.Avatar)
		request.AvatarURL = &avatarURL
	}

	birthDate := strings.TrimSpace(form.BirthDate)
	if birthDate != "" && (user.BirthDate == nil || *user.BirthDate != birthDate) {
		if err := validate.BirthDate(birthDate); err != nil {
			return api.UpdateProfileRequest{}, err
		}
		request.BirthDate = &birthDate
	}

	return request, nil
}

// failed leaves the state as it was, apart from releasing the in-flight
// marker of the failed operation, and raises a notice.
func failed(s State, t OperationFailed) (State, []Effect) {
	if t.Op.IsLoad() && t.Epoch != s.Epoch {
		return s, nil
	}

	switch view := s.View.(type) {
	case AuthView:
		if t.Op == OpLogin {
			view.Submitting = false
			s.View = view
		}
	case RegisterView:
		if t.Op == OpRegister {
			view.Submitting = false
			s.View = view
		}
	case SettingsView:
		if t.Op == OpUpdateProfile {
			view.Submitting = false
			s.View = view
		}
	case ChatView:
		if t.Op == OpSendText && t.Epoch == s.Epoch {
			view.Sending = false
			s.View = view
		}
	}

	s.Notice = Classify(t.Err)
	return s, nil
}

// Classify turns an operation error into the notice shown to the user.
func Classify(err error) *Notice {
	var serviceErr *api.Error
	switch {
	case errors.As(err, &serviceErr):
		return &Notice{Kind: NoticeService, Text: serviceErr.Error()}
	case validate.IsValidation(err), media.IsMedia(err):
		return &Notice{Kind: NoticeValidation, Text: err.Error()}
	default:
		return &Notice{Kind: NoticeTransport, Text: transportNotice}
	}
}
