package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formMode int

// Password recovery runs forgotForm, verifyForm and resetForm in that order.
const (
	loginForm formMode = iota
	forgotForm
	verifyForm
	resetForm
)

// accountForm holds the login and password recovery inputs of the Account view.
type accountForm struct {
	mode   formMode
	inputs []textinput.Model
	focus  int
	token  string // verified reset token, set in resetForm
}

func newAccountForm(mode formMode) accountForm {
	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 128
		ti.Width = 40
		return ti
	}

	newPassword := func(placeholder string) textinput.Model {
		ti := newInput(placeholder)
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
		return ti
	}

	var inputs []textinput.Model
	switch mode {
	case forgotForm:
		inputs = []textinput.Model{newInput("you@example.com")}
	case verifyForm:
		inputs = []textinput.Model{newInput("reset token")}
	case resetForm:
		inputs = []textinput.Model{newPassword("new password"), newPassword("confirm password")}
	default:
		inputs = []textinput.Model{newInput("username or email"), newPassword("password")}
	}
	inputs[0].Focus()
	return accountForm{mode: mode, inputs: inputs}
}

// Update routes a key to the focused input. It reports true when the form is submitted.
func (f *accountForm) Update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "up", "shift+tab":
		f.move(-1)
		return false, nil
	case "down":
		f.move(1)
		return false, nil
	case "enter":
		if f.focus == len(f.inputs)-1 {
			return true, nil
		}
		f.move(1)
		return false, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

func (f *accountForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f accountForm) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
		if in.EchoMode != textinput.EchoPassword {
			out[i] = strings.TrimSpace(out[i])
		}
	}
	return out
}

func (f accountForm) View() string {
	var b strings.Builder
	switch f.mode {
	case forgotForm:
		b.WriteString(styles.title.Render("Forgot password"))
		b.WriteString("\nEnter the email address of your account.\n\n")
		b.WriteString("Email     " + f.inputs[0].View() + "\n")
	case verifyForm:
		b.WriteString(styles.title.Render("Verify reset token"))
		b.WriteString("\nPaste the token you received.\n\n")
		b.WriteString("Token     " + f.inputs[0].View() + "\n")
	case resetForm:
		b.WriteString(styles.title.Render("Choose a new password"))
		b.WriteString("\n")
		b.WriteString("Password  " + f.inputs[0].View() + "\n")
		b.WriteString("Confirm   " + f.inputs[1].View() + "\n")
	default:
		b.WriteString(styles.title.Render("Log in"))
		b.WriteString("\n")
		b.WriteString("User      " + f.inputs[0].View() + "\n")
		b.WriteString("Password  " + f.inputs[1].View() + "\n")
	}
	return b.String()
}
