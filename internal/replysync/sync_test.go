package replysync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spirelore/spirebot/internal/commands"
	"github.com/spirelore/spirebot/internal/content"
	"github.com/spirelore/spirebot/internal/render"
	"github.com/spirelore/spirebot/internal/resolve"
	"github.com/spirelore/spirebot/internal/search"
)

type sendCall struct {
	channelID string
	sourceID  string
	content   string
	embeds    []render.Embed
}

type editCall struct {
	channelID string
	messageID string
	content   string
	embeds    []render.Embed
}

type deleteCall struct {
	channelID string
	messageID string
}

type fakePlatform struct {
	sends   []sendCall
	edits   []editCall
	deletes []deleteCall

	history    []Message
	historyErr error
	sendErr    error
}

func (f *fakePlatform) SendReply(ctx context.Context, channelID, sourceID, content string, embeds []render.Embed) error {
	f.sends = append(f.sends, sendCall{channelID, sourceID, content, embeds})
	return f.sendErr
}

func (f *fakePlatform) EditMessage(ctx context.Context, channelID, messageID, content string, embeds []render.Embed) error {
	f.edits = append(f.edits, editCall{channelID, messageID, content, embeds})
	return nil
}

func (f *fakePlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.deletes = append(f.deletes, deleteCall{channelID, messageID})
	return nil
}

func (f *fakePlatform) RecentHistory(ctx context.Context, channelID string) ([]Message, error) {
	return f.history, f.historyErr
}

func (f *fakePlatform) BotUserID() string { return "bot-1" }

func testResolver() *resolve.Resolver {
	index := search.New()
	index.Add(content.Record{
		Name:           "Burning Blood",
		Kind:           "relic",
		NormalizedName: "burning blood",
		SearchText:     "burning blood the ironclad relic starter heal",
		Tier:           "Starter",
		Character:      content.Character{Name: "The Ironclad", Color: 0xB3342D},
	})
	index.Add(content.Record{
		Name:           "Bash",
		Kind:           "card",
		NormalizedName: "bash",
		SearchText:     "bash the ironclad card attack deal damage vulnerable",
		Type:           "Attack",
		Character:      content.Character{Name: "The Ironclad", Color: 0xB3342D},
	})
	return resolve.New(index, commands.NewTable("test"))
}

func newTestSynchronizer(platform *fakePlatform, logRoot string) *Synchronizer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(platform, testResolver(), render.New(), logger, logRoot, 10)
}

func TestMessageCreatedSendsOneReply(t *testing.T) {
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, "")

	sync.MessageCreated(context.Background(), Message{
		ID:        "m1",
		ChannelID: "c1",
		AuthorID:  "u1",
		Content:   "what does <burning blood> and <bash> do?",
	})

	if len(platform.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(platform.sends))
	}
	sent := platform.sends[0]
	if sent.sourceID != "m1" || sent.channelID != "c1" {
		t.Fatalf("reply targeted %s/%s", sent.channelID, sent.sourceID)
	}
	if len(sent.embeds) != 2 {
		t.Fatalf("embeds = %d, want 2", len(sent.embeds))
	}
	if sent.embeds[0].Title != "Burning Blood" || sent.embeds[1].Title != "Bash" {
		t.Fatalf("embed order: %q, %q", sent.embeds[0].Title, sent.embeds[1].Title)
	}
}

func TestMessageCreatedIgnoresBots(t *testing.T) {
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, "")
	sync.MessageCreated(context.Background(), Message{ID: "m1", ChannelID: "c1", Bot: true, Content: "<bash>"})
	if len(platform.sends) != 0 {
		t.Fatalf("bot messages must be ignored, got %d sends", len(platform.sends))
	}
}

func TestMessageCreatedNoTokensNoReply(t *testing.T) {
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, "")
	sync.MessageCreated(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: "just chatting about bash"})
	if len(platform.sends) != 0 {
		t.Fatalf("plain text must produce no reply, got %d sends", len(platform.sends))
	}
}

func TestMessageCreatedAllTokensSkipped(t *testing.T) {
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, "")
	sync.MessageCreated(context.Background(), Message{
		ID: "m1", ChannelID: "c1",
		Content: "hey <@1234> look at <#chan> and <:smile:99> via <http://x.test>",
	})
	if len(platform.sends) != 0 {
		t.Fatalf("skipped tokens must produce no reply, got %d sends", len(platform.sends))
	}
}

func TestMessageCreatedLimitCountsRawTokens(t *testing.T) {
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, "")

	// 11 raw tokens, but 10 of them are skippable mentions: the limit is
	// checked before filtering, so the notice still fires.
	msgText := "<bash>" + strings.Repeat("<@1>", 10)
	sync.MessageCreated(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: msgText})

	if len(platform.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(platform.sends))
	}
	sent := platform.sends[0]
	if !strings.Contains(sent.content, "up to 10 queries") {
		t.Fatalf("expected limit notice, got %q", sent.content)
	}
	if len(sent.embeds) != 0 {
		t.Fatalf("limit notice must carry no embeds, got %d", len(sent.embeds))
	}
}

func TestMessageCreatedAtLimitStillReplies(t *testing.T) {
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, "")

	msgText := "<bash>" + strings.Repeat("<@1>", 9) // exactly 10 raw tokens
	sync.MessageCreated(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: msgText})

	if len(platform.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(platform.sends))
	}
	if len(platform.sends[0].embeds) != 1 {
		t.Fatalf("expected the bash embed, got %d embeds", len(platform.sends[0].embeds))
	}
}

func TestMessageEditedUpdatesExistingReply(t *testing.T) {
	platform := &fakePlatform{
		history: []Message{
			{ID: "r1", ChannelID: "c1", AuthorID: "bot-1", ReferencedID: "m1"},
			{ID: "x1", ChannelID: "c1", AuthorID: "u2"},
		},
	}
	sync := newTestSynchronizer(platform, "")

	sync.MessageEdited(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: "<burning blood>"})

	if len(platform.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(platform.edits))
	}
	edit := platform.edits[0]
	if edit.messageID != "r1" {
		t.Fatalf("edited message %s, want r1", edit.messageID)
	}
	if len(edit.embeds) != 1 || edit.embeds[0].Title != "Burning Blood" {
		t.Fatalf("edit embeds: %+v", edit.embeds)
	}
	if len(platform.sends)+len(platform.deletes) != 0 {
		t.Fatal("edit with payloads must only edit")
	}
}

func TestMessageEditedDeletesReplyWhenQueriesVanish(t *testing.T) {
	platform := &fakePlatform{
		history: []Message{{ID: "r1", ChannelID: "c1", AuthorID: "bot-1", ReferencedID: "m1"}},
	}
	sync := newTestSynchronizer(platform, "")

	sync.MessageEdited(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: "never mind"})

	if len(platform.deletes) != 1 || platform.deletes[0].messageID != "r1" {
		t.Fatalf("deletes = %+v, want r1", platform.deletes)
	}
}

func TestMessageEditedCreatesReplyWhenNoneExists(t *testing.T) {
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, "")

	sync.MessageEdited(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: "now with <bash>"})

	if len(platform.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(platform.sends))
	}
	if platform.sends[0].sourceID != "m1" {
		t.Fatalf("reply references %s, want m1", platform.sends[0].sourceID)
	}
}

func TestMessageEditedOverLimitEditsToNotice(t *testing.T) {
	platform := &fakePlatform{
		history: []Message{{ID: "r1", ChannelID: "c1", AuthorID: "bot-1", ReferencedID: "m1"}},
	}
	sync := newTestSynchronizer(platform, "")

	sync.MessageEdited(context.Background(), Message{
		ID: "m1", ChannelID: "c1", Content: strings.Repeat("<bash>", 11),
	})

	if len(platform.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(platform.edits))
	}
	edit := platform.edits[0]
	if !strings.Contains(edit.content, "up to 10 queries") || len(edit.embeds) != 0 {
		t.Fatalf("edit = %+v, want bare limit notice", edit)
	}
}

func TestMessageEditedIgnoresForeignReplies(t *testing.T) {
	platform := &fakePlatform{
		history: []Message{
			// Another user replying to the source must not be mistaken for
			// the bot's reply.
			{ID: "r9", ChannelID: "c1", AuthorID: "u9", ReferencedID: "m1"},
			{ID: "r2", ChannelID: "c1", AuthorID: "bot-1", ReferencedID: "other"},
		},
	}
	sync := newTestSynchronizer(platform, "")

	sync.MessageEdited(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: "<bash>"})

	if len(platform.edits) != 0 {
		t.Fatalf("must not edit a foreign reply: %+v", platform.edits)
	}
	if len(platform.sends) != 1 {
		t.Fatalf("sends = %d, want a fresh reply", len(platform.sends))
	}
}

func TestMessageDeletedRemovesReply(t *testing.T) {
	platform := &fakePlatform{
		history: []Message{{ID: "r1", ChannelID: "c1", AuthorID: "bot-1", ReferencedID: "m1"}},
	}
	sync := newTestSynchronizer(platform, "")

	sync.MessageDeleted(context.Background(), Message{ID: "m1", ChannelID: "c1"})

	if len(platform.deletes) != 1 || platform.deletes[0].messageID != "r1" {
		t.Fatalf("deletes = %+v, want r1", platform.deletes)
	}
}

func TestMessageDeletedNoReplyNoop(t *testing.T) {
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, "")
	sync.MessageDeleted(context.Background(), Message{ID: "m1", ChannelID: "c1"})
	if len(platform.deletes) != 0 {
		t.Fatalf("deletes = %d, want 0", len(platform.deletes))
	}
}

func TestPlatformErrorsAreSwallowed(t *testing.T) {
	platform := &fakePlatform{
		sendErr:    errors.New("rate limited"),
		historyErr: errors.New("forbidden"),
	}
	sync := newTestSynchronizer(platform, "")

	sync.MessageCreated(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: "<bash>"})
	sync.MessageEdited(context.Background(), Message{ID: "m1", ChannelID: "c1", Content: "<bash>"})
	sync.MessageDeleted(context.Background(), Message{ID: "m1", ChannelID: "c1"})
	// Reaching here without a panic is the assertion: failures are logged,
	// never propagated.
}

func TestQueriesAreLogged(t *testing.T) {
	root := t.TempDir()
	platform := &fakePlatform{}
	sync := newTestSynchronizer(platform, root)

	sync.MessageCreated(context.Background(), Message{
		ID: "m1", ChannelID: "chan42", AuthorID: "u1", Content: "<burning blood> <zzqq>",
	})

	data, err := os.ReadFile(filepath.Join(root, "queries", "chan42.md"))
	if err != nil {
		t.Fatalf("read query log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "burning blood") || !strings.Contains(text, "Burning Blood") {
		t.Fatalf("log missing match entry: %s", text)
	}
	if !strings.Contains(text, "no-result") {
		t.Fatalf("log missing no-result entry: %s", text)
	}
}
