package proto

import "strings"

// CommandKind identifies a client request.
type CommandKind int

const (
	// CommandUnknown is any keyword the server does not recognise.
	CommandUnknown CommandKind = iota
	// CommandHello logs the connection in under a display name.
	CommandHello
	// CommandChat starts a one-to-one chat with another user.
	CommandChat
	// CommandMsg relays text to the current chat partner.
	CommandMsg
	// CommandEnd ends the current chat.
	CommandEnd
	// CommandQuit closes the connection.
	CommandQuit
)

var commandKeywords = map[string]CommandKind{
	"HELLO": CommandHello,
	"CHAT":  CommandChat,
	"MSG":   CommandMsg,
	"END":   CommandEnd,
	"QUIT":  CommandQuit,
}

func (k CommandKind) String() string {
	switch k {
	case CommandHello:
		return "HELLO"
	case CommandChat:
		return "CHAT"
	case CommandMsg:
		return "MSG"
	case CommandEnd:
		return "END"
	case CommandQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// Command is one parsed client line.
type Command struct {
	Kind CommandKind
	// Keyword is the upper-cased first word as received.
	Keyword string
	// Payload is everything after the first space, unmodified.
	Payload string
}

// Arg returns the payload with surrounding whitespace removed,
// for commands whose argument is a name.
func (c Command) Arg() string {
	return strings.TrimSpace(c.Payload)
}

// ParseCommand turns a line into a Command. Blank lines yield ok == false.
// Surrounding whitespace of the line is ignored; the keyword is case-insensitive.
func ParseCommand(line string) (cmd Command, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, false
	}

	keyword, payload, _ := strings.Cut(line, " ")
	keyword = strings.ToUpper(keyword)

	kind, known := commandKeywords[keyword]
	if !known {
		kind = CommandUnknown
	}
	return Command{Kind: kind, Keyword: keyword, Payload: payload}, true
}
