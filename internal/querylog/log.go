package querylog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Entry is one resolved query, recorded after the reply has been synchronized.
type Entry struct {
	Root       string
	ChannelID  string
	AuthorID   string
	Query      string
	ResultKind string
	ResultName string
	Timestamp  time.Time
}

var pathSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Append records an entry to a per-channel markdown file under the log root.
// An empty root disables logging; an empty query is dropped.
func Append(entry Entry) error {
	root := strings.TrimSpace(entry.Root)
	if root == "" {
		return nil
	}
	query := strings.TrimSpace(entry.Query)
	if query == "" {
		return nil
	}

	channel := sanitizeSegment(entry.ChannelID)
	if channel == "" {
		channel = "unknown"
	}
	timestamp := entry.Timestamp.UTC()
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	baseDir := filepath.Join(root, "queries")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}
	logPath := filepath.Join(baseDir, channel+".md")

	header := ""
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		header = fmt.Sprintf("# Query Log\n\n- channel: `%s`\n\n", channel)
	}

	kind := strings.TrimSpace(strings.ToLower(entry.ResultKind))
	if kind == "" {
		kind = "no-result"
	}
	actor := strings.TrimSpace(entry.AuthorID)
	if actor == "" {
		actor = "unknown"
	}
	result := strings.TrimSpace(entry.ResultName)
	if result == "" {
		result = "-"
	}
	body := fmt.Sprintf(
		"## %s `%s`\n- author: `%s`\n- result: `%s`\n\n%s\n\n",
		timestamp.Format(time.RFC3339),
		kind,
		actor,
		result,
		query,
	)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	if header != "" {
		if _, err := file.WriteString(header); err != nil {
			return err
		}
	}
	if _, err := file.WriteString(body); err != nil {
		return err
	}
	return nil
}

func sanitizeSegment(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.ReplaceAll(trimmed, " ", "-")
	trimmed = pathSanitizer.ReplaceAllString(trimmed, "-")
	trimmed = strings.Trim(trimmed, "-.")
	return strings.ToLower(trimmed)
}
