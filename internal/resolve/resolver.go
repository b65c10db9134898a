package resolve

import (
	"strings"

	"github.com/spirelore/spirebot/internal/commands"
	"github.com/spirelore/spirebot/internal/content"
	"github.com/spirelore/spirebot/internal/search"
)

// OutcomeKind discriminates the three resolution results.
type OutcomeKind int

const (
	// OutcomeMatch carries a record from the store plus its match score.
	OutcomeMatch OutcomeKind = iota
	// OutcomeCommand carries a command invocation from the command table.
	OutcomeCommand
	// OutcomeNoResult marks a query with no plausible match.
	OutcomeNoResult
)

// Outcome is the result of resolving a single query token. Exactly one of the
// kind-specific field groups is meaningful, selected by Kind.
type Outcome struct {
	Kind  OutcomeKind
	Token string // original token text, kept for diagnostics and display
	Query string // normalized query

	Record content.Record // OutcomeMatch
	Score  float64        // OutcomeMatch; 0 means perfect

	Command string           // OutcomeCommand
	Handler commands.Handler // OutcomeCommand
	Arg     string           // OutcomeCommand; remainder after the name
}

// KindLabel names the outcome kind for logging.
func (o Outcome) KindLabel() string {
	switch o.Kind {
	case OutcomeMatch:
		return o.Record.Kind
	case OutcomeCommand:
		return content.KindCommand
	default:
		return content.KindNoResult
	}
}

// Resolver turns query tokens into outcomes against a fixed index and command
// table. Resolution is a pure function of its inputs: it never errors, never
// mutates, and is safe for concurrent use.
type Resolver struct {
	index *search.Index
	table commands.Table
}

func New(index *search.Index, table commands.Table) *Resolver {
	return &Resolver{index: index, table: table}
}

// Resolve maps one token to an outcome. Command names take absolute
// precedence over content matches; a verbatim name beats any fuzzy ranking.
func (r *Resolver) Resolve(token string) Outcome {
	query := content.Normalize(token)

	name, arg, _ := strings.Cut(query, " ")
	if handler, ok := r.table[name]; ok {
		return Outcome{
			Kind:    OutcomeCommand,
			Token:   token,
			Query:   query,
			Command: name,
			Handler: handler,
			Arg:     strings.TrimSpace(arg),
		}
	}

	matches := r.index.Search(query)
	if len(matches) == 0 {
		return Outcome{Kind: OutcomeNoResult, Token: token, Query: query}
	}

	top := matches[0]
	if top.Record.NormalizedName == query {
		// A verbatim name is a perfect match no matter how the engine scored it.
		return Outcome{Kind: OutcomeMatch, Token: token, Query: query, Record: top.Record, Score: 0}
	}
	if exact, ok := r.index.ExactByName(query); ok {
		// Exact-match override: a record named verbatim beats the fuzzy ranking.
		return Outcome{Kind: OutcomeMatch, Token: token, Query: query, Record: exact, Score: 0}
	}
	return Outcome{Kind: OutcomeMatch, Token: token, Query: query, Record: top.Record, Score: top.Score}
}
