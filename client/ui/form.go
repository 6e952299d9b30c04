package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// form is a column of text inputs with one focused at a time.
type form struct {
	inputs []textinput.Model
	focus  int
}

func newInput(placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Width = 40
	return input
}

func newPasswordInput(placeholder string) textinput.Model {
	input := newInput(placeholder, 128)
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	return input
}

func newForm(inputs ...textinput.Model) form {
	f := form{inputs: inputs}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *form) value(i int) string {
	return f.inputs[i].Value()
}

func (f *form) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// update handles focus keys and forwards everything else to the focused
// input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, nextFieldKey):
			f.move(1)
			return nil
		case key.Matches(msg, prevFieldKey):
			f.move(-1)
			return nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, min(60, width-4))
	}
}

func (f *form) view() string {
	var b strings.Builder
	for _, input := range f.inputs {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	return b.String()
}
