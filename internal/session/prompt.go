package session

import (
	"github.com/AlecAivazis/survey/v2"
)

// Prompter asks the user for menu selections and free-text input. It is an
// interface so tests can script the whole interaction.
type Prompter interface {
	// Select shows message with the given options and returns the index of
	// the chosen one.
	Select(message string, options []string) (int, error)
	// Input asks for a single line of text. When validate is non-nil the
	// prompt re-asks until the answer passes.
	Input(message string, validate func(string) error) (string, error)
}

// surveyPrompter renders prompts on the terminal via survey.
type surveyPrompter struct{}

// NewPrompter returns the terminal-backed Prompter.
func NewPrompter() Prompter {
	return surveyPrompter{}
}

func (surveyPrompter) Select(message string, options []string) (int, error) {
	var idx int
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(prompt, &idx); err != nil {
		return 0, err
	}
	return idx, nil
}

func (surveyPrompter) Input(message string, validate func(string) error) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message}

	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}

	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return "", err
	}
	return answer, nil
}
