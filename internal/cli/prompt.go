package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// interactive reports whether stdin and stdout are attached to a terminal
func interactive() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}

// promptMissing asks for a value that was not given as a flag. Outside a
// terminal a missing value is an error naming the flag.
func promptMissing(value *string, title, flag string, secret bool) error {
	if *value != "" {
		return nil
	}
	if !interactive() {
		return fmt.Errorf("--%s is required when not running in a terminal", flag)
	}

	input := huh.NewInput().Title(title).Value(value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	return input.Run()
}

// huhConfirmer asks for confirmation with a yes/no prompt
type huhConfirmer struct{}

func (huhConfirmer) Confirm(prompt string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
