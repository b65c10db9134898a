package content

// Synthetic record kinds produced by the core itself rather than ingestion.
const (
	KindCommand  = "command"
	KindHelp     = "help"
	KindNoResult = "no-result"
)

// Record is one searchable unit of game content. Records are immutable after
// creation; the store they live in is populated once at startup.
type Record struct {
	Name           string
	Kind           string
	NormalizedName string
	SearchText     string

	Type        string
	Color       string
	Pool        string
	Tier        string
	Rarity      string
	Mod         string
	Description string
	Character   Character
}

// HelpRecord is the single static record the core adds to the store on top of
// the ingested corpus, so `<help>` has a fuzzy-reachable fallback even without
// the help command.
func HelpRecord() Record {
	record := Record{
		Name:      "help",
		Kind:      KindHelp,
		Character: CharacterFor(""),
	}
	record.NormalizedName = Normalize(record.Name)
	record.SearchText = record.NormalizedName
	return record
}
