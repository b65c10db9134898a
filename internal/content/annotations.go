package content

import (
	"fmt"
	"regexp"
	"strings"

	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed annotations.yaml
var annotationsYAML []byte

// Character is the display metadata associated with a card color or relic
// pool: the owning character's name, the embed accent color, and the label
// substituted for energy placeholders in descriptions.
type Character struct {
	Name   string `yaml:"name"`
	Color  int    `yaml:"color"`
	Energy string `yaml:"energy"`
}

type annotations struct {
	Default    Character            `yaml:"default"`
	Characters map[string]Character `yaml:"characters"`
	Keywords   []string             `yaml:"keywords"`
}

var loadedAnnotations = mustLoadAnnotations()

func mustLoadAnnotations() annotations {
	var parsed annotations
	if err := yaml.Unmarshal(annotationsYAML, &parsed); err != nil {
		panic(fmt.Sprintf("parse embedded annotations: %v", err))
	}
	return parsed
}

// CharacterFor looks up the character associated with a card color or relic
// pool value. Unknown or empty keys map to the neutral default.
func CharacterFor(key string) Character {
	if character, ok := loadedAnnotations.Characters[strings.TrimSpace(key)]; ok {
		return character
	}
	return loadedAnnotations.Default
}

var (
	energyPlaceholder = regexp.MustCompile(`\[[RGBWE]\]`)
	keywordPattern    = buildKeywordPattern()
)

func buildKeywordPattern() *regexp.Regexp {
	terms := make([]string, 0, len(loadedAnnotations.Keywords))
	for _, keyword := range loadedAnnotations.Keywords {
		trimmed := strings.TrimSpace(keyword)
		if trimmed == "" {
			continue
		}
		terms = append(terms, regexp.QuoteMeta(trimmed))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(terms, "|") + `)\b`)
}

// Keywordify decorates a raw description: energy placeholders such as [R] or
// [E] become the character's energy label, and known keyword terms are bolded
// for chat display.
func Keywordify(description string, character Character) string {
	energy := strings.TrimSpace(character.Energy)
	if energy == "" {
		energy = loadedAnnotations.Default.Energy
	}
	decorated := energyPlaceholder.ReplaceAllString(description, energy)
	return keywordPattern.ReplaceAllString(decorated, "**$1**")
}
