package querylog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendCreatesMarkdownLog(t *testing.T) {
	root := t.TempDir()
	err := Append(Entry{
		Root:       root,
		ChannelID:  "123456",
		AuthorID:   "user-1",
		Query:      "burning blood",
		ResultKind: "relic",
		ResultName: "Burning Blood",
		Timestamp:  time.Unix(1700000000, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	logPath := filepath.Join(root, "queries", "123456.md")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "# Query Log") {
		t.Fatalf("expected markdown header, got %s", content)
	}
	if !strings.Contains(content, "burning blood") {
		t.Fatalf("expected query text, got %s", content)
	}
	if !strings.Contains(content, "`relic`") {
		t.Fatalf("expected result kind, got %s", content)
	}
}

func TestAppendSkipsEmptyQuery(t *testing.T) {
	root := t.TempDir()
	if err := Append(Entry{Root: root, ChannelID: "42", Query: "   "}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	logPath := filepath.Join(root, "queries", "42.md")
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Fatalf("expected no file for empty query, got err=%v", err)
	}
}

func TestAppendNoOpWithoutRoot(t *testing.T) {
	if err := Append(Entry{ChannelID: "42", Query: "bash"}); err != nil {
		t.Fatalf("append without root must be a no-op, got %v", err)
	}
}
