package nav

import "github.com/JRI98/maxogram/internal/api"

// Effect is work requested by a transition. Effects are plain data; the
// controller performs them and reports back with a Trigger.
type Effect interface {
	isEffect()
}

type Op int

const (
	OpLogin Op = iota
	OpRegister
	OpLoadChats
	OpLoadMessages
	OpLoadDirectory
	OpSendText
	OpSendVoice
	OpUpdateProfile
	OpRecovery
)

var opNames = [...]string{
	OpLogin:         "login",
	OpRegister:      "register",
	OpLoadChats:     "load chats",
	OpLoadMessages:  "load messages",
	OpLoadDirectory: "load directory",
	OpSendText:      "send text",
	OpSendVoice:     "send voice",
	OpUpdateProfile: "update profile",
	OpRecovery:      "recovery",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return "unknown"
	}
	return opNames[o]
}

// IsLoad reports whether the operation is a screen-entry load, whose result
// is only meaningful for the epoch that issued it.
func (o Op) IsLoad() bool {
	return o == OpLoadChats || o == OpLoadMessages || o == OpLoadDirectory
}

type (
	Login struct {
		Username string
		Password string
	}

	Register struct {
		Username string
		Email    string
		Password string
	}

	LoadChats struct {
		UserID int64
		Epoch  uint64
	}

	LoadMessages struct {
		UserID    int64
		PartnerID int64
		Epoch     uint64
	}

	LoadDirectory struct {
		Epoch uint64
	}

	SendTextMessage struct {
		SenderID   int64
		ReceiverID int64
		Text       string
		Epoch      uint64
	}

	SendVoiceMessage struct {
		SenderID   int64
		ReceiverID int64
		Audio      []byte
		Duration   int
		Epoch      uint64
	}

	UpdateProfile struct {
		Request api.UpdateProfileRequest
	}

	RequestRecovery struct {
		Username string
	}

	ConfirmRecovery struct {
		Username    string
		Code        string
		NewPassword string
	}

	StartCapture struct{}
	AwaitTick    struct{}
	StopCapture  struct{}
	AbortCapture struct{}
)

func (Login) isEffect()            {}
func (Register) isEffect()         {}
func (LoadChats) isEffect()        {}
func (LoadMessages) isEffect()     {}
func (LoadDirectory) isEffect()    {}
func (SendTextMessage) isEffect()  {}
func (SendVoiceMessage) isEffect() {}
func (UpdateProfile) isEffect()    {}
func (RequestRecovery) isEffect()  {}
func (ConfirmRecovery) isEffect()  {}
func (StartCapture) isEffect()     {}
func (AwaitTick) isEffect()        {}
func (StopCapture) isEffect()      {}
func (AbortCapture) isEffect()     {}
