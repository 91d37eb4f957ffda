package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// errAborted reports an interrupted prompt.
var errAborted = errors.New("validgen: selection aborted")

// selectTypes asks which of names to generate. Tests replace it.
var selectTypes = surveySelect

func surveySelect(ctx context.Context, source string, names []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	var out []string
	prompt := &survey.MultiSelect{
		Message:  fmt.Sprintf("Types to generate from %s", source),
		Options:  names,
		Default:  names,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return nil, errAborted
		}
		return nil, err
	}
	return out, nil
}
