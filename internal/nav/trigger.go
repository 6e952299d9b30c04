package nav

import "github.com/JRI98/maxogram/internal/api"

// Trigger is anything that can move the state machine: a user action or the
// outcome of an effect.
type Trigger interface {
	isTrigger()
}

// User actions.
type (
	OpenRegister struct{}
	Back         struct{}
	Refresh      struct{}

	SubmitLogin struct {
		Username string
		Password string
	}

	SubmitRegister struct {
		Username string
		Email    string
		Password string
	}

	RequestRecoveryCode struct {
		Username string
	}

	ResetPassword struct {
		Username    string
		Code        string
		NewPassword string
	}

	Navigate struct {
		To Screen
	}

	SelectChat struct {
		PartnerID int64
	}

	SelectResult struct {
		UserID int64
	}

	EditQuery struct {
		Query string
	}

	EditDraft struct {
		Text string
	}

	SendText       struct{}
	StartRecording struct{}
	StopRecording  struct{}
	Logout         struct{}
	OpenSettings   struct{}

	// SaveSettings carries the settings form. Avatar is nil when no new
	// image was picked.
	SaveSettings struct {
		Username  string
		BirthDate string
		Avatar    []byte
	}

	DismissNotice struct{}
)

// Effect outcomes.
type (
	AuthSucceeded struct {
		User api.UserProfile
	}

	ChatsLoaded struct {
		Epoch uint64
		Chats []api.ChatSummary
	}

	MessagesLoaded struct {
		Epoch    uint64
		Messages []api.Message
	}

	DirectoryLoaded struct {
		Epoch uint64
		Users []api.UserProfile
	}

	MessageSent struct {
		Epoch uint64
		Voice bool
	}

	ProfileUpdated struct {
		User    api.UserProfile
		Message string
	}

	RecoverySent struct {
		Message string
	}

	RecordingStarted struct{}
	RecordingTick    struct{}

	AudioCaptured struct {
		Audio []byte
	}

	CaptureFailed struct {
		Err error
	}

	OperationFailed struct {
		Op    Op
		Epoch uint64
		Err   error
	}
)

func (OpenRegister) isTrigger()        {}
func (Back) isTrigger()                {}
func (Refresh) isTrigger()             {}
func (SubmitLogin) isTrigger()         {}
func (SubmitRegister) isTrigger()      {}
func (RequestRecoveryCode) isTrigger() {}
func (ResetPassword) isTrigger()       {}
func (Navigate) isTrigger()            {}
func (SelectChat) isTrigger()          {}
func (SelectResult) isTrigger()        {}
func (EditQuery) isTrigger()           {}
func (EditDraft) isTrigger()           {}
func (SendText) isTrigger()            {}
func (StartRecording) isTrigger()      {}
func (StopRecording) isTrigger()       {}
func (Logout) isTrigger()              {}
func (OpenSettings) isTrigger()        {}
func (SaveSettings) isTrigger()        {}
func (DismissNotice) isTrigger()       {}
func (AuthSucceeded) isTrigger()       {}
func (ChatsLoaded) isTrigger()         {}
func (MessagesLoaded) isTrigger()      {}
func (DirectoryLoaded) isTrigger()     {}
func (MessageSent) isTrigger()         {}
func (ProfileUpdated) isTrigger()      {}
func (RecoverySent) isTrigger()        {}
func (RecordingStarted) isTrigger()    {}
func (RecordingTick) isTrigger()       {}
func (AudioCaptured) isTrigger()       {}
func (CaptureFailed) isTrigger()       {}
func (OperationFailed) isTrigger()     {}
