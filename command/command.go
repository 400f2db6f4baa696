// Package command turns text commands into playback and configuration changes.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCommand is returned for text that is neither a command nor a usable token.
var ErrInvalidCommand = errors.New("invalid command")

// Kind is the command type.
type Kind int

const (
	Reset Kind = iota
	Forward
	Reverse
	Stop
	Clear
	StepForward
	StepBackward
	StepTo
	Now
	Configure
)

func (k Kind) String() string {
	switch k {
	case Reset:
		return "reset"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case Stop:
		return "stop"
	case Clear:
		return "clear"
	case StepForward:
		return "+"
	case StepBackward:
		return "-"
	case StepTo:
		return "step"
	case Now:
		return "now"
	case Configure:
		return "configure"
	}
	return "unknown"
}

// Command is a parsed command.
type Command struct {
	Kind       Kind
	Generation int    // StepTo target
	Token      string // Configure record token
}

var keywords = map[string]Kind{
	"reset":   Reset,
	"forward": Forward,
	"reverse": Reverse,
	"stop":    Stop,
	"clear":   Clear,
	"+":       StepForward,
	"-":       StepBackward,
	"now":     Now,
}

// Parse reads one command. Keywords are case-insensitive; any other single word is a
// configuration token.
func Parse(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty", ErrInvalidCommand)
	}
	word := strings.ToLower(fields[0])

	if word == "step" {
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%w: step needs one generation number", ErrInvalidCommand)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: step %q", ErrInvalidCommand, fields[1])
		}
		return Command{Kind: StepTo, Generation: n}, nil
	}
	if len(fields) != 1 {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, text)
	}
	if k, ok := keywords[word]; ok {
		return Command{Kind: k}, nil
	}
	return Command{Kind: Configure, Token: fields[0]}, nil
}
