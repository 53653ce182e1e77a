package main

import (
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"
)

var errAborted = errors.New("viewstack: prompt aborted")

// interactive reports whether component selection can prompt the user.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

func selectComponent(names []string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("viewstack: manifest registers no components")
	}

	var out string
	prompt := &survey.Select{
		Message: "Component to render:",
		Options: names,
	}
	if len(names) > 10 {
		prompt.PageSize = 10
	}
	if err := survey.AskOne(prompt, &out, survey.WithStdio(os.Stdin, os.Stderr, os.Stderr)); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errAborted
		}
		return "", err
	}
	return out, nil
}
