package replysync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spirelore/spirebot/internal/querylog"
	"github.com/spirelore/spirebot/internal/render"
	"github.com/spirelore/spirebot/internal/resolve"
)

// Message is the platform-agnostic view of a chat message.
type Message struct {
	ID           string
	ChannelID    string
	AuthorID     string
	Bot          bool
	Content      string
	ReferencedID string
}

// Platform is the messaging surface the synchronizer drives. Implementations
// wrap a chat platform's REST API.
type Platform interface {
	SendReply(ctx context.Context, channelID, sourceID, content string, embeds []render.Embed) error
	EditMessage(ctx context.Context, channelID, messageID, content string, embeds []render.Embed) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	RecentHistory(ctx context.Context, channelID string) ([]Message, error)
	BotUserID() string
}

// QueryResolver maps one query token to an outcome.
type QueryResolver interface {
	Resolve(token string) resolve.Outcome
}

// Renderer turns an outcome into an embed, or nil to suppress it.
type Renderer interface {
	Render(outcome resolve.Outcome, prior []render.Embed) *render.Embed
}

// Synchronizer keeps one bot reply in lockstep with its source message across
// creates, edits, and deletes. Platform failures are logged and swallowed: a
// missed sync never takes the session down.
type Synchronizer struct {
	platform Platform
	resolver QueryResolver
	renderer Renderer
	logger   *slog.Logger
	logRoot  string
	limit    int
}

func New(platform Platform, resolver QueryResolver, renderer Renderer, logger *slog.Logger, logRoot string, limit int) *Synchronizer {
	if limit <= 0 {
		limit = 10
	}
	return &Synchronizer{
		platform: platform,
		resolver: resolver,
		renderer: renderer,
		logger:   logger.With("component", "replysync"),
		logRoot:  logRoot,
		limit:    limit,
	}
}

func (s *Synchronizer) limitNotice() string {
	return fmt.Sprintf(
		"I can only take up to %d queries at a time! Edit your message to use %d or fewer queries, and I'll update mine.",
		s.limit, s.limit,
	)
}

// MessageCreated resolves a new message's queries and posts one reply when
// they produce any payloads.
func (s *Synchronizer) MessageCreated(ctx context.Context, msg Message) {
	if msg.Bot {
		return
	}
	extraction := resolve.Extract(msg.Content)
	if len(extraction.Raw) > s.limit {
		if err := s.platform.SendReply(ctx, msg.ChannelID, msg.ID, s.limitNotice(), nil); err != nil {
			s.logger.Error("send limit notice failed", "channel_id", msg.ChannelID, "error", err)
		}
		return
	}
	if len(extraction.Queries) == 0 {
		return
	}
	embeds := s.renderQueries(msg, extraction.Queries)
	if len(embeds) == 0 {
		return
	}
	if err := s.platform.SendReply(ctx, msg.ChannelID, msg.ID, "", embeds); err != nil {
		s.logger.Error("send reply failed", "channel_id", msg.ChannelID, "source_id", msg.ID, "error", err)
	}
}

// MessageEdited re-resolves the edited message and converges the bot reply:
// edit it when there are payloads, delete it when there are none, and create
// it when payloads appear where no reply exists yet.
func (s *Synchronizer) MessageEdited(ctx context.Context, msg Message) {
	if msg.Bot {
		return
	}
	reply, found := s.findReply(ctx, msg.ChannelID, msg.ID)

	extraction := resolve.Extract(msg.Content)
	if len(extraction.Raw) > s.limit {
		if found {
			if err := s.platform.EditMessage(ctx, msg.ChannelID, reply.ID, s.limitNotice(), nil); err != nil {
				s.logger.Error("edit to limit notice failed", "channel_id", msg.ChannelID, "reply_id", reply.ID, "error", err)
			}
			return
		}
		if err := s.platform.SendReply(ctx, msg.ChannelID, msg.ID, s.limitNotice(), nil); err != nil {
			s.logger.Error("send limit notice failed", "channel_id", msg.ChannelID, "error", err)
		}
		return
	}

	var embeds []render.Embed
	if len(extraction.Queries) > 0 {
		embeds = s.renderQueries(msg, extraction.Queries)
	}

	switch {
	case found && len(embeds) > 0:
		if err := s.platform.EditMessage(ctx, msg.ChannelID, reply.ID, "", embeds); err != nil {
			s.logger.Error("edit reply failed", "channel_id", msg.ChannelID, "reply_id", reply.ID, "error", err)
		}
	case found:
		if err := s.platform.DeleteMessage(ctx, msg.ChannelID, reply.ID); err != nil {
			s.logger.Error("delete reply failed", "channel_id", msg.ChannelID, "reply_id", reply.ID, "error", err)
		}
	case len(embeds) > 0:
		if err := s.platform.SendReply(ctx, msg.ChannelID, msg.ID, "", embeds); err != nil {
			s.logger.Error("send reply failed", "channel_id", msg.ChannelID, "source_id", msg.ID, "error", err)
		}
	}
}

// MessageDeleted removes the bot reply tracking the deleted message, if any.
func (s *Synchronizer) MessageDeleted(ctx context.Context, msg Message) {
	reply, found := s.findReply(ctx, msg.ChannelID, msg.ID)
	if !found {
		return
	}
	if err := s.platform.DeleteMessage(ctx, msg.ChannelID, reply.ID); err != nil {
		s.logger.Error("delete reply failed", "channel_id", msg.ChannelID, "reply_id", reply.ID, "error", err)
	}
}

// findReply scans recent channel history for a bot-authored message that
// references the source message. There is no reply store: history is the
// single source of truth, so restarts lose nothing.
func (s *Synchronizer) findReply(ctx context.Context, channelID, sourceID string) (Message, bool) {
	history, err := s.platform.RecentHistory(ctx, channelID)
	if err != nil {
		s.logger.Error("history scan failed", "channel_id", channelID, "error", err)
		return Message{}, false
	}
	botID := s.platform.BotUserID()
	for _, candidate := range history {
		if candidate.AuthorID != botID {
			continue
		}
		if candidate.ReferencedID == sourceID {
			return candidate, true
		}
	}
	return Message{}, false
}

func (s *Synchronizer) renderQueries(msg Message, queries []string) []render.Embed {
	var embeds []render.Embed
	for _, query := range queries {
		outcome := s.resolver.Resolve(query)
		s.record(msg, outcome)
		if embed := s.renderer.Render(outcome, embeds); embed != nil {
			embeds = append(embeds, *embed)
		}
	}
	return embeds
}

func (s *Synchronizer) record(msg Message, outcome resolve.Outcome) {
	entry := querylog.Entry{
		Root:       s.logRoot,
		ChannelID:  msg.ChannelID,
		AuthorID:   msg.AuthorID,
		Query:      outcome.Query,
		ResultKind: outcome.KindLabel(),
		Timestamp:  time.Now().UTC(),
	}
	switch outcome.Kind {
	case resolve.OutcomeMatch:
		entry.ResultName = outcome.Record.Name
	case resolve.OutcomeCommand:
		entry.ResultName = outcome.Command
	}
	if err := querylog.Append(entry); err != nil {
		s.logger.Warn("query log append failed", "channel_id", msg.ChannelID, "error", err)
	}
}
