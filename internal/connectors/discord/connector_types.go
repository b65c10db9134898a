package discord

import (
	"encoding/json"

	"github.com/spirelore/spirebot/internal/render"
	"github.com/spirelore/spirebot/internal/replysync"
)

type gatewayEnvelope struct {
	Op int             `json:"op"`
	T  string          `json:"t"`
	S  *int64          `json:"s"`
	D  json.RawMessage `json:"d"`
}

type discordHello struct {
	HeartbeatIntervalMS int64 `json:"heartbeat_interval"`
}

type discordReady struct {
	User discordAuthor `json:"user"`
}

type discordAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

type messageReference struct {
	MessageID string `json:"message_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

type discordMessage struct {
	ID                string            `json:"id"`
	ChannelID         string            `json:"channel_id"`
	Content           string            `json:"content"`
	Author            discordAuthor     `json:"author"`
	MessageReference  *messageReference `json:"message_reference"`
	ReferencedMessage *discordMessage   `json:"referenced_message"`
}

func (m discordMessage) asMessage() replysync.Message {
	msg := replysync.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Bot:       m.Author.Bot,
		Content:   m.Content,
	}
	if m.MessageReference != nil {
		msg.ReferencedID = m.MessageReference.MessageID
	}
	if msg.ReferencedID == "" && m.ReferencedMessage != nil {
		msg.ReferencedID = m.ReferencedMessage.ID
	}
	return msg
}

type discordMessageDelete struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

func (m discordMessageDelete) asMessage() replysync.Message {
	return replysync.Message{ID: m.ID, ChannelID: m.ChannelID}
}

type allowedMentions struct {
	RepliedUser bool `json:"replied_user"`
}

type createMessagePayload struct {
	Content          string            `json:"content,omitempty"`
	Embeds           []render.Embed    `json:"embeds,omitempty"`
	MessageReference *messageReference `json:"message_reference,omitempty"`
	AllowedMentions  *allowedMentions  `json:"allowed_mentions,omitempty"`
}

// editMessagePayload always carries both fields so an edit can clear the
// previous content or embed list.
type editMessagePayload struct {
	Content string         `json:"content"`
	Embeds  []render.Embed `json:"embeds"`
}
