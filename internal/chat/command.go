package chat

import "strings"

// CommandTrigger starts an in-band command when it is the first character of
// a (trimmed) chat message. A trigger anywhere else leaves the text as chat.
const CommandTrigger = "/"

const (
	createRoomKeyword = "createroom"
	joinRoomKeyword   = "joinroom"
)

type CommandKind int

const (
	// CommandNone: plain chat, fall through to broadcast.
	CommandNone CommandKind = iota
	CommandCreateRoom
	CommandJoinRoom
	// CommandUnknown: trigger present but keyword unrecognized. Consumed and
	// logged, never broadcast, so a typo'd "/jionroom x" does not leak.
	CommandUnknown
	// CommandMalformed: recognized keyword missing its room-name argument.
	CommandMalformed
)

// Command is the typed result of parsing one chat message.
type Command struct {
	Kind    CommandKind
	Keyword string
	Name    string
}

// ParseCommand interprets text as an in-band command. Keywords are matched
// case-insensitively; the room-name argument is the first whitespace-separated
// token after the keyword.
func ParseCommand(text string) Command {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, CommandTrigger) {
		return Command{Kind: CommandNone}
	}
	fields := strings.Fields(strings.TrimPrefix(trimmed, CommandTrigger))
	if len(fields) == 0 {
		return Command{Kind: CommandMalformed}
	}
	keyword := strings.ToLower(fields[0])
	switch keyword {
	case createRoomKeyword, joinRoomKeyword:
		if len(fields) < 2 {
			return Command{Kind: CommandMalformed, Keyword: keyword}
		}
		kind := CommandCreateRoom
		if keyword == joinRoomKeyword {
			kind = CommandJoinRoom
		}
		return Command{Kind: kind, Keyword: keyword, Name: fields[1]}
	default:
		return Command{Kind: CommandUnknown, Keyword: keyword}
	}
}
