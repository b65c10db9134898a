package commands

import (
	"fmt"
	"strings"
)

// Result is the display payload a command produces; the renderer turns it
// into a platform embed.
type Result struct {
	Title string
	Body  string
}

// Handler runs one command invocation. arg is the remainder of the normalized
// query after the command name, possibly empty.
type Handler func(arg string) Result

// Table is the static command mapping, keyed by lowercase command name and
// queried by exact string only. Immutable process-wide once built.
type Table map[string]Handler

const helpBody = "Wrap a query in angle brackets to look it up, like `<bash>` or `<burning blood>`.\n" +
	"Up to 10 queries per message. Edit or delete your message and the reply follows.\n" +
	"Commands use the same brackets: `<help>`, `<about>`."

// Help is the usage payload, shared by the help command and the fuzzy-reachable
// help record.
func Help() Result {
	return Result{Title: "How to use this bot", Body: helpBody}
}

// NewTable builds the command table for the given build version.
func NewTable(version string) Table {
	return Table{
		"help": func(arg string) Result {
			return Help()
		},
		"about": func(arg string) Result {
			return Result{
				Title: "About",
				Body: fmt.Sprintf(
					"spirebot %s — Slay the Spire: Downfall content lookup.\nData reloads on restart; replies stay in sync with message edits.",
					strings.TrimSpace(version),
				),
			}
		},
	}
}
