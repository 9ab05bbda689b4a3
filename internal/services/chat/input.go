package chat

import (
	"errors"
	"fmt"
	"strings"
)

// CommandKind is what a line typed at the prompt asks for.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdText
	CmdTo
	CmdAll
	CmdImage
	CmdWho
	CmdHelp
	CmdQuit
)

// Command is a parsed input line.
type Command struct {
	Kind CommandKind
	Arg  string
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingArg     = errors.New("missing argument")
)

// HelpText lists the prompt commands.
const HelpText = `/to <id>     send direct messages to <id>
/all         send to everyone
/img <path>  send an image (png, jpg, jpeg, bmp)
/who         show the roster
/help        show this help
/quit        leave
//text       send a line starting with "/"
`

// ParseInput parses one line typed at the prompt.
func ParseInput(line string) (Command, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return Command{Kind: CmdNone}, nil
	case strings.HasPrefix(line, "//"):
		return Command{Kind: CmdText, Arg: line[1:]}, nil
	case !strings.HasPrefix(line, "/"):
		return Command{Kind: CmdText, Arg: line}, nil
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/to":
		if arg == "" {
			return Command{}, fmt.Errorf("%w: /to <id>", ErrMissingArg)
		}
		return Command{Kind: CmdTo, Arg: arg}, nil
	case "/all":
		return Command{Kind: CmdAll}, nil
	case "/img":
		if arg == "" {
			return Command{}, fmt.Errorf("%w: /img <path>", ErrMissingArg)
		}
		return Command{Kind: CmdImage, Arg: arg}, nil
	case "/who":
		return Command{Kind: CmdWho}, nil
	case "/help", "/?":
		return Command{Kind: CmdHelp}, nil
	case "/quit", "/exit":
		return Command{Kind: CmdQuit}, nil
	}
	return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

// Exec runs cmd against the session. quit is true for CmdQuit.
func (s *Session) Exec(cmd Command) (quit bool, err error) {
	switch cmd.Kind {
	case CmdNone:
	case CmdText:
		err = s.SendText(cmd.Arg)
	case CmdTo:
		if err = s.SetTarget(cmd.Arg); err == nil {
			s.printf("%s\n", s.TargetLabel())
		}
	case CmdAll:
		s.ClearTarget()
		s.printf("%s\n", s.TargetLabel())
	case CmdImage:
		err = s.SendImage(cmd.Arg)
	case CmdWho:
		s.printRoster()
	case CmdHelp:
		s.printf("%s", HelpText)
	case CmdQuit:
		return true, nil
	}
	return false, err
}

func (s *Session) printRoster() {
	roster := s.Roster()
	target := s.Target()
	var b strings.Builder
	b.WriteString("Contacts / Roster\n")
	if len(roster) == 0 {
		b.WriteString("  (empty)\n")
	}
	for _, id := range roster {
		mark := " "
		if id == target {
			mark = "*"
		}
		fmt.Fprintf(&b, " %s %s\n", mark, id)
	}
	s.printf("%s", b.String())
}
