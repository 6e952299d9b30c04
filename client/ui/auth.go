package ui

import (
	"strings"

	"github.com/JRI98/maxogram/internal/nav"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loginUsername = iota
	loginPassword
)

const (
	recoveryUsername = iota
	recoveryCode
	recoveryPassword
)

type authScreen struct {
	login      form
	recovery   form
	recovering bool
}

func newAuthScreen() *authScreen {
	return &authScreen{
		login: newForm(
			newInput("Username", 20),
			newPasswordInput("Password"),
		),
		recovery: newForm(
			newInput("Username", 20),
			newInput("Code from the support chat", 6),
			newPasswordInput("New password"),
		),
	}
}

func (s *authScreen) init() tea.Cmd {
	return textinput.Blink
}

func (s *authScreen) update(msg tea.Msg, state nav.State) (tea.Cmd, []nav.Trigger) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, registerKey) && !s.recovering:
			return nil, []nav.Trigger{nav.OpenRegister{}}
		case key.Matches(msg, recoveryKey):
			s.recovering = !s.recovering
			return nil, nil
		case key.Matches(msg, requestCodeKey) && s.recovering:
			return nil, []nav.Trigger{nav.RequestRecoveryCode{Username: s.recovery.value(recoveryUsername)}}
		case key.Matches(msg, submitKey) && s.recovering:
			return nil, []nav.Trigger{nav.ResetPassword{
				Username:    s.recovery.value(recoveryUsername),
				Code:        s.recovery.value(recoveryCode),
				NewPassword: s.recovery.value(recoveryPassword),
			}}
		case key.Matches(msg, submitKey):
			return nil, []nav.Trigger{nav.SubmitLogin{
				Username: s.login.value(loginUsername),
				Password: s.login.value(loginPassword),
			}}
		}
	}

	if s.recovering {
		return s.recovery.update(msg), nil
	}
	return s.login.update(msg), nil
}

func (s *authScreen) sync(nav.State) {}

func (s *authScreen) resize(width int, height int) {
	s.login.resize(width)
	s.recovery.resize(width)
}

func (s *authScreen) capturing() bool {
	return false
}

func (s *authScreen) view(state nav.State) string {
	var b strings.Builder

	if s.recovering {
		b.WriteString(titleStyle.Render("Maxogram · Password recovery"))
		b.WriteString("\n\n")
		b.WriteString(s.recovery.view())
		return b.String()
	}

	b.WriteString(titleStyle.Render("Maxogram · Sign in"))
	b.WriteString("\n\n")
	b.WriteString(s.login.view())

	if view, ok := state.View.(nav.AuthView); ok && view.Submitting {
		b.WriteString(dimStyle.Render("Signing in…"))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *authScreen) keys(nav.State) bindings {
	if s.recovering {
		return bindings{requestCodeKey, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "reset password")), nextFieldKey, recoveryKey}
	}
	return bindings{submitKey, nextFieldKey, registerKey, recoveryKey}
}

const (
	registerUsername = iota
	registerEmail
	registerPassword
)

type registerScreen struct {
	form form
}

func newRegisterScreen() *registerScreen {
	return &registerScreen{
		form: newForm(
			newInput("Username (3-20 letters, digits, _)", 20),
			newInput("Email (optional)", 254),
			newPasswordInput("Password"),
		),
	}
}

func (s *registerScreen) init() tea.Cmd {
	return textinput.Blink
}

func (s *registerScreen) update(msg tea.Msg, state nav.State) (tea.Cmd, []nav.Trigger) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, submitKey) {
		return nil, []nav.Trigger{nav.SubmitRegister{
			Username: s.form.value(registerUsername),
			Email:    s.form.value(registerEmail),
			Password: s.form.value(registerPassword),
		}}
	}

	return s.form.update(msg), nil
}

func (s *registerScreen) sync(nav.State) {}

func (s *registerScreen) resize(width int, height int) {
	s.form.resize(width)
}

func (s *registerScreen) capturing() bool {
	return false
}

func (s *registerScreen) view(state nav.State) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Maxogram · Create account"))
	b.WriteString("\n\n")
	b.WriteString(s.form.view())

	if view, ok := state.View.(nav.RegisterView); ok && view.Submitting {
		b.WriteString(dimStyle.Render("Creating account…"))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *registerScreen) keys(nav.State) bindings {
	return bindings{submitKey, nextFieldKey, globalKeys.Back}
}
