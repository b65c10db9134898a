package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spirelore/spirebot/internal/render"
	"github.com/spirelore/spirebot/internal/replysync"
)

// SendReply posts a message replying to sourceID. Reply pings are suppressed
// so lookups never notify the author twice.
func (c *Connector) SendReply(ctx context.Context, channelID, sourceID, content string, embeds []render.Embed) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages", c.apiBase, channelID)
	payload := createMessagePayload{
		Content:         content,
		Embeds:          embeds,
		AllowedMentions: &allowedMentions{RepliedUser: false},
	}
	if sourceID != "" {
		payload.MessageReference = &messageReference{MessageID: sourceID}
	}
	_, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return fmt.Errorf("discord send message: %w", err)
	}
	return nil
}

func (c *Connector) EditMessage(ctx context.Context, channelID, messageID, content string, embeds []render.Embed) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages/%s", c.apiBase, channelID, messageID)
	if embeds == nil {
		embeds = []render.Embed{}
	}
	_, err := c.do(ctx, http.MethodPatch, endpoint, editMessagePayload{Content: content, Embeds: embeds})
	if err != nil {
		return fmt.Errorf("discord edit message: %w", err)
	}
	return nil
}

func (c *Connector) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages/%s", c.apiBase, channelID, messageID)
	if _, err := c.do(ctx, http.MethodDelete, endpoint, nil); err != nil {
		return fmt.Errorf("discord delete message: %w", err)
	}
	return nil
}

// RecentHistory fetches the newest messages in the channel, newest first, as
// the platform returns them.
func (c *Connector) RecentHistory(ctx context.Context, channelID string) ([]replysync.Message, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/messages?limit=%d", c.apiBase, channelID, c.historyLimit)
	data, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("discord channel history: %w", err)
	}
	var page []discordMessage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode channel history: %w", err)
	}
	history := make([]replysync.Message, 0, len(page))
	for _, message := range page {
		history = append(history, message.asMessage())
	}
	return history, nil
}

func (c *Connector) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", "spirebot/0.1")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("status=%d body=%s", res.StatusCode, string(bytes.TrimSpace(data)))
	}
	return data, nil
}
