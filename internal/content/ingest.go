package content

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

type rawRecord struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Color       string `json:"color"`
	Pool        string `json:"pool"`
	Tier        string `json:"tier"`
	Rarity      string `json:"rarity"`
	Mod         string `json:"mod"`
	Description string `json:"description"`
}

// Load reads the hierarchical content document and flattens it into records.
// The document groups arrays of raw entries by plural category name; each
// entry carries at minimum a name plus category-specific fields. A document
// that cannot be read or parsed is fatal: the process is expected to abort
// before the chat connection opens.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content document: %w", err)
	}
	return Parse(data)
}

// Parse flattens the raw content document bytes into records. Categories are
// walked in sorted order so the resulting store is deterministic.
func Parse(data []byte) ([]Record, error) {
	var document map[string][]rawRecord
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parse content document: %w", err)
	}

	categories := make([]string, 0, len(document))
	for category := range document {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var records []Record
	for _, category := range categories {
		kind := strings.TrimSuffix(category, "s")
		for _, raw := range document[category] {
			if raw.Type == "Player" {
				continue
			}
			records = append(records, flatten(kind, category, raw))
		}
	}
	return records, nil
}

func flatten(kind, category string, raw rawRecord) Record {
	character := CharacterFor("")
	switch category {
	case "cards":
		character = CharacterFor(raw.Color)
	case "relics":
		character = CharacterFor(raw.Pool)
	}

	mod := strings.ToLower(strings.TrimSpace(raw.Mod))
	if mod == "" {
		mod = "slay-the-spire"
	}

	description := ""
	if raw.Description != "" {
		description = Keywordify(raw.Description, character)
	}

	record := Record{
		Name:        raw.Name,
		Kind:        kind,
		Type:        raw.Type,
		Color:       raw.Color,
		Pool:        raw.Pool,
		Tier:        raw.Tier,
		Rarity:      raw.Rarity,
		Mod:         mod,
		Description: description,
		Character:   character,
	}
	record.NormalizedName = Normalize(record.Name)
	record.SearchText = buildSearchText(record)
	return record
}

// buildSearchText concatenates the normalized display fields into the single
// flattened string the fuzzy index matches against.
func buildSearchText(record Record) string {
	fields := []string{
		record.Name,
		record.Character.Name,
		record.Kind,
		record.Type,
		record.Color,
		record.Description,
		record.Tier,
		record.Rarity,
	}
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = Normalize(field)
	}
	return strings.Join(parts, " ")
}
