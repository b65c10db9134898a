package render

import (
	"fmt"
	"strings"

	"github.com/spirelore/spirebot/internal/commands"
	"github.com/spirelore/spirebot/internal/content"
	"github.com/spirelore/spirebot/internal/resolve"
)

// Embed is the wire shape of one Discord embed.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Footer struct {
	Text string `json:"text"`
}

type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// Render turns one resolution outcome into an embed, or nil to suppress it.
// prior is the accumulator of embeds already rendered for the same message;
// an outcome that would duplicate an earlier embed contributes nothing.
func (r *Renderer) Render(outcome resolve.Outcome, prior []Embed) *Embed {
	var embed *Embed
	switch outcome.Kind {
	case resolve.OutcomeCommand:
		result := outcome.Handler(outcome.Arg)
		embed = &Embed{Title: result.Title, Description: result.Body}
	case resolve.OutcomeNoResult:
		embed = &Embed{
			Title:       "No results",
			Description: fmt.Sprintf("Nothing in the collection matches `%s`.", strings.TrimSpace(outcome.Token)),
		}
	case resolve.OutcomeMatch:
		embed = recordEmbed(outcome)
	default:
		return nil
	}
	for _, existing := range prior {
		if existing.Title == embed.Title && existing.Description == embed.Description {
			return nil
		}
	}
	return embed
}

func recordEmbed(outcome resolve.Outcome) *Embed {
	record := outcome.Record
	if record.Kind == content.KindHelp {
		usage := commands.Help()
		return &Embed{Title: usage.Title, Description: usage.Body}
	}

	embed := &Embed{
		Title:       record.Name,
		Description: record.Description,
		Color:       record.Character.Color,
	}
	addField := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		embed.Fields = append(embed.Fields, Field{Name: name, Value: value, Inline: true})
	}
	addField("Kind", record.Kind)
	addField("Character", record.Character.Name)
	addField("Type", record.Type)
	addField("Tier", record.Tier)
	addField("Rarity", record.Rarity)
	if record.Mod != "" && record.Mod != "slay-the-spire" {
		addField("Mod", record.Mod)
	}
	if outcome.Score > 0 {
		embed.Footer = &Footer{Text: fmt.Sprintf("closest match for \"%s\"", outcome.Query)}
	}
	return embed
}
