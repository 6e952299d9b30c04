package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/media"
	"github.com/JRI98/maxogram/internal/nav"
	"github.com/JRI98/maxogram/internal/recording"
)

type AuthService interface {
	Login(ctx context.Context, username string, password string) (api.UserProfile, error)
	Register(ctx context.Context, username string, email string, password string) (api.UserProfile, error)
}

type MessagingService interface {
	Chats(ctx context.Context, userID int64) ([]api.ChatSummary, error)
	Messages(ctx context.Context, userID int64, partnerID int64) ([]api.Message, error)
	Users(ctx context.Context) ([]api.UserProfile, error)
	SendText(ctx context.Context, senderID int64, receiverID int64, text string) error
	SendVoice(ctx context.Context, senderID int64, receiverID int64, voiceURL string, duration int) error
}

type ProfileService interface {
	Get(ctx context.Context, userID int64) (api.UserProfile, error)
	Update(ctx context.Context, request api.UpdateProfileRequest) (api.UserResponse, error)
}

type RecoveryService interface {
	RequestCode(ctx context.Context, username string) (string, error)
	ResetPassword(ctx context.Context, username string, code string, newPassword string) (string, error)
}

type Recorder interface {
	Start(ctx context.Context) error
	Ticks() <-chan time.Time
	Done() <-chan struct{}
	Stop() ([]byte, error)
	Abort() error
	Close() error
}

type Services struct {
	Auth      AuthService
	Messaging MessagingService
	Profile   ProfileService
	Recovery  RecoveryService
}

// Command performs one effect off the UI goroutine. A nil trigger means
// there is nothing to report.
type Command func() nav.Trigger

// Controller owns the navigation state. Dispatch must only be called from a
// single goroutine; the commands it returns may run anywhere.
type Controller struct {
	state    nav.State
	services Services
	recorder Recorder
	logger   *slog.Logger
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	epoch       uint64
	epochCtx    context.Context
	epochCancel context.CancelFunc
}

func New(services Services, recorder Recorder, logger *slog.Logger, timeout time.Duration) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	epochCtx, epochCancel := context.WithCancel(ctx)

	return &Controller{
		state:       nav.Initial(),
		services:    services,
		recorder:    recorder,
		logger:      logger,
		timeout:     timeout,
		ctx:         ctx,
		cancel:      cancel,
		epoch:       nav.Initial().Epoch,
		epochCtx:    epochCtx,
		epochCancel: epochCancel,
	}
}

func (c *Controller) State() nav.State {
	return c.state
}

func (c *Controller) Dispatch(trigger nav.Trigger) []Command {
	from := c.state.Screen()

	next, effects := nav.Transition(c.state, trigger)
	c.state = next

	if next.Screen() != from {
		c.logger.Debug("screen changed", slog.String("from", from.String()), slog.String("to", next.Screen().String()))
	}

	if next.Epoch != c.epoch {
		// Loads issued for the previous screen entry can no longer land.
		c.epochCancel()
		c.epochCtx, c.epochCancel = context.WithCancel(c.ctx)
		c.epoch = next.Epoch
	}

	commands := make([]Command, 0, len(effects))
	for _, effect := range effects {
		commands = append(commands, c.command(effect))
	}

	return commands
}

// Close cancels everything in flight and releases the microphone.
func (c *Controller) Close() error {
	c.epochCancel()
	c.cancel()

	return c.recorder.Close()
}

func (c *Controller) command(effect nav.Effect) Command {
	switch e := effect.(type) {
	case nav.Login:
		return c.login(e)
	case nav.Register:
		return c.register(e)
	case nav.LoadChats:
		return c.loadChats(e)
	case nav.LoadMessages:
		return c.loadMessages(e)
	case nav.LoadDirectory:
		return c.loadDirectory(e)
	case nav.SendTextMessage:
		return c.sendText(e)
	case nav.SendVoiceMessage:
		return c.sendVoice(e)
	case nav.UpdateProfile:
		return c.updateProfile(e)
	case nav.RequestRecovery:
		return c.requestRecovery(e)
	case nav.ConfirmRecovery:
		return c.confirmRecovery(e)
	case nav.StartCapture:
		return c.startCapture()
	case nav.AwaitTick:
		return c.awaitTick()
	case nav.StopCapture:
		return c.stopCapture()
	case nav.AbortCapture:
		return c.abortCapture()
	default:
		c.logger.Error("unknown effect", slog.Any("effect", effect))
		return func() nav.Trigger { return nil }
	}
}

func (c *Controller) request(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// fail reports err unless ctx was canceled because the screen was left.
func (c *Controller) fail(ctx context.Context, op nav.Op, epoch uint64, err error) nav.Trigger {
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		c.logger.Debug("request canceled", slog.String("op", op.String()), slog.Uint64("epoch", epoch))
		return nil
	}

	c.logger.Warn("request failed", slog.String("op", op.String()), slog.Any("error", err))
	return nav.OperationFailed{Op: op, Epoch: epoch, Err: err}
}

func (c *Controller) login(e nav.Login) Command {
	ctx := c.ctx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("logging in", slog.String("username", e.Username))

		user, err := c.services.Auth.Login(ctx, e.Username, e.Password)
		if err != nil {
			return c.fail(ctx, nav.OpLogin, 0, err)
		}

		profile, err := c.services.Profile.Get(ctx, user.ID)
		if err != nil {
			c.logger.Warn("failed to refresh profile", slog.Int64("user_id", user.ID), slog.Any("error", err))
			return nav.AuthSucceeded{User: user}
		}

		return nav.AuthSucceeded{User: profile}
	}
}

func (c *Controller) register(e nav.Register) Command {
	ctx := c.ctx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("registering", slog.String("username", e.Username))

		user, err := c.services.Auth.Register(ctx, e.Username, e.Email, e.Password)
		if err != nil {
			return c.fail(ctx, nav.OpRegister, 0, err)
		}

		return nav.AuthSucceeded{User: user}
	}
}

func (c *Controller) loadChats(e nav.LoadChats) Command {
	ctx := c.epochCtx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("loading chats", slog.Int64("user_id", e.UserID), slog.Uint64("epoch", e.Epoch))

		chats, err := c.services.Messaging.Chats(ctx, e.UserID)
		if err != nil {
			return c.fail(ctx, nav.OpLoadChats, e.Epoch, err)
		}

		return nav.ChatsLoaded{Epoch: e.Epoch, Chats: chats}
	}
}

func (c *Controller) loadMessages(e nav.LoadMessages) Command {
	ctx := c.epochCtx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("loading messages", slog.Int64("user_id", e.UserID), slog.Int64("partner_id", e.PartnerID), slog.Uint64("epoch", e.Epoch))

		messages, err := c.services.Messaging.Messages(ctx, e.UserID, e.PartnerID)
		if err != nil {
			return c.fail(ctx, nav.OpLoadMessages, e.Epoch, err)
		}

		return nav.MessagesLoaded{Epoch: e.Epoch, Messages: messages}
	}
}

func (c *Controller) loadDirectory(e nav.LoadDirectory) Command {
	ctx := c.epochCtx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("loading users", slog.Uint64("epoch", e.Epoch))

		users, err := c.services.Messaging.Users(ctx)
		if err != nil {
			return c.fail(ctx, nav.OpLoadDirectory, e.Epoch, err)
		}

		return nav.DirectoryLoaded{Epoch: e.Epoch, Users: users}
	}
}

func (c *Controller) sendText(e nav.SendTextMessage) Command {
	ctx := c.ctx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("sending message", slog.Int64("receiver_id", e.ReceiverID))

		err := c.services.Messaging.SendText(ctx, e.SenderID, e.ReceiverID, e.Text)
		if err != nil {
			return c.fail(ctx, nav.OpSendText, e.Epoch, err)
		}

		return nav.MessageSent{Epoch: e.Epoch}
	}
}

func (c *Controller) sendVoice(e nav.SendVoiceMessage) Command {
	ctx := c.ctx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("sending voice message", slog.Int64("receiver_id", e.ReceiverID), slog.Int("duration", e.Duration), slog.Int("bytes", len(e.Audio)))

		err := c.services.Messaging.SendVoice(ctx, e.SenderID, e.ReceiverID, media.DataURL(e.Audio), e.Duration)
		if err != nil {
			return c.fail(ctx, nav.OpSendVoice, e.Epoch, err)
		}

		return nav.MessageSent{Epoch: e.Epoch, Voice: true}
	}
}

func (c *Controller) updateProfile(e nav.UpdateProfile) Command {
	ctx := c.ctx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("updating profile",
			slog.Int64("user_id", e.Request.UserID),
			slog.Bool("username", e.Request.NewUsername != nil),
			slog.Bool("avatar", e.Request.AvatarURL != nil),
			slog.Bool("birth_date", e.Request.BirthDate != nil),
		)

		response, err := c.services.Profile.Update(ctx, e.Request)
		if err != nil {
			return c.fail(ctx, nav.OpUpdateProfile, 0, err)
		}

		return nav.ProfileUpdated{User: response.User, Message: response.Message}
	}
}

func (c *Controller) requestRecovery(e nav.RequestRecovery) Command {
	ctx := c.ctx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("requesting recovery code", slog.String("username", e.Username))

		message, err := c.services.Recovery.RequestCode(ctx, e.Username)
		if err != nil {
			return c.fail(ctx, nav.OpRecovery, 0, err)
		}

		return nav.RecoverySent{Message: message}
	}
}

func (c *Controller) confirmRecovery(e nav.ConfirmRecovery) Command {
	ctx := c.ctx
	return func() nav.Trigger {
		ctx, cancel := c.request(ctx)
		defer cancel()

		c.logger.Debug("resetting password", slog.String("username", e.Username))

		message, err := c.services.Recovery.ResetPassword(ctx, e.Username, e.Code, e.NewPassword)
		if err != nil {
			return c.fail(ctx, nav.OpRecovery, 0, err)
		}

		return nav.RecoverySent{Message: message}
	}
}

func (c *Controller) startCapture() Command {
	ctx := c.ctx
	return func() nav.Trigger {
		err := c.recorder.Start(ctx)
		if err != nil {
			c.logger.Warn("failed to start recording", slog.Any("error", err))
			return nav.CaptureFailed{Err: err}
		}

		c.logger.Debug("recording started")
		return nav.RecordingStarted{}
	}
}

// awaitTick blocks until the next tick of the running capture. It returns
// nothing once the capture has ended.
func (c *Controller) awaitTick() Command {
	return func() nav.Trigger {
		ticks, done := c.recorder.Ticks(), c.recorder.Done()

		select {
		case <-ticks:
			return nav.RecordingTick{}
		case <-done:
			return nil
		}
	}
}

func (c *Controller) stopCapture() Command {
	return func() nav.Trigger {
		audio, err := c.recorder.Stop()
		if err != nil {
			c.logger.Warn("failed to stop recording", slog.Any("error", err))
			return nav.CaptureFailed{Err: err}
		}

		c.logger.Debug("recording stopped", slog.Int("bytes", len(audio)))
		return nav.AudioCaptured{Audio: audio}
	}
}

func (c *Controller) abortCapture() Command {
	return func() nav.Trigger {
		err := c.recorder.Abort()
		if err != nil && !errors.Is(err, recording.ErrNotRecording) {
			c.logger.Warn("failed to abort recording", slog.Any("error", err))
		}
		return nil
	}
}
