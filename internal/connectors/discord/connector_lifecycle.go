package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

func (c *Connector) Start(ctx context.Context) error {
	if c.token == "" {
		c.logger.Info("connector disabled, token missing")
		<-ctx.Done()
		return nil
	}

	c.logger.Info("connector started", "mode", "gateway")
	for {
		if ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return nil
		}
		if err := c.runSession(ctx); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("connector stopped")
				return nil
			}
			c.logger.Error("discord session ended, reconnecting", "error", err)
			select {
			case <-ctx.Done():
				c.logger.Info("connector stopped")
				return nil
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func (c *Connector) runSession(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.gatewayURL, nil)
	if err != nil {
		return fmt.Errorf("dial discord gateway: %w", err)
	}
	defer conn.Close()

	var (
		writeMu      sync.Mutex
		sequence     int64
		heartbeatSec = 30 * time.Second
	)

	readHelloDone := false
	for !readHelloDone {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read hello: %w", err)
		}
		var envelope gatewayEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("decode hello payload: %w", err)
		}
		if envelope.Op != 10 {
			continue
		}
		var hello discordHello
		if err := json.Unmarshal(envelope.D, &hello); err != nil {
			return fmt.Errorf("decode hello body: %w", err)
		}
		heartbeatSec = time.Duration(hello.HeartbeatIntervalMS) * time.Millisecond
		readHelloDone = true
	}

	if err := c.sendIdentify(conn, &writeMu); err != nil {
		return err
	}

	heartbeatCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()
	go c.heartbeatLoop(heartbeatCtx, conn, &writeMu, &sequence, heartbeatSec)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read gateway message: %w", err)
		}

		var envelope gatewayEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			c.logger.Error("decode gateway envelope failed", "error", err)
			continue
		}
		if envelope.S != nil {
			sequence = *envelope.S
		}

		switch envelope.Op {
		case 0:
			c.handleDispatch(ctx, conn, &writeMu, envelope)
		case 1:
			if err := c.sendHeartbeat(conn, &writeMu, sequence); err != nil {
				return err
			}
		case 7:
			return fmt.Errorf("gateway requested reconnect")
		case 9:
			return fmt.Errorf("gateway invalid session")
		}
	}
}

func (c *Connector) handleDispatch(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, envelope gatewayEnvelope) {
	switch envelope.T {
	case "READY":
		var ready discordReady
		if err := json.Unmarshal(envelope.D, &ready); err != nil {
			c.logger.Error("decode ready failed", "error", err)
			return
		}
		c.setBotUserID(ready.User.ID)
		c.logger.Info("gateway ready", "bot_user_id", ready.User.ID)
		if err := c.sendPresence(conn, writeMu); err != nil {
			c.logger.Warn("presence update failed", "error", err)
		}
	case "MESSAGE_CREATE":
		var message discordMessage
		if err := json.Unmarshal(envelope.D, &message); err != nil {
			c.logger.Error("decode message create failed", "error", err)
			return
		}
		go c.sync.MessageCreated(ctx, message.asMessage())
	case "MESSAGE_UPDATE":
		var message discordMessage
		if err := json.Unmarshal(envelope.D, &message); err != nil {
			c.logger.Error("decode message update failed", "error", err)
			return
		}
		// Embed unfurls and other partial updates arrive without an author;
		// only author-bearing content edits re-resolve.
		if message.Author.ID == "" {
			return
		}
		go c.sync.MessageEdited(ctx, message.asMessage())
	case "MESSAGE_DELETE":
		var deleted discordMessageDelete
		if err := json.Unmarshal(envelope.D, &deleted); err != nil {
			c.logger.Error("decode message delete failed", "error", err)
			return
		}
		go c.sync.MessageDeleted(ctx, deleted.asMessage())
	}
}

func (c *Connector) heartbeatLoop(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, seq *int64, interval time.Duration) {
	if interval < time.Second {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.sendHeartbeat(conn, writeMu, *seq); err != nil {
				c.logger.Error("heartbeat failed", "error", err)
				return
			}
		}
	}
}

func (c *Connector) sendIdentify(conn *websocket.Conn, writeMu *sync.Mutex) error {
	payload := map[string]any{
		"op": 2,
		"d": map[string]any{
			"token": c.token,
			"intents": discordIntentGuilds |
				discordIntentGuildMessages |
				discordIntentDirectMessages |
				discordIntentMessageContents,
			"properties": map[string]string{
				"os":      "linux",
				"browser": "spirebot",
				"device":  "spirebot",
			},
		},
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("send identify: %w", err)
	}
	return nil
}

func (c *Connector) sendPresence(conn *websocket.Conn, writeMu *sync.Mutex) error {
	if c.presence == "" {
		return nil
	}
	payload := map[string]any{
		"op": 3,
		"d": map[string]any{
			"since":      nil,
			"activities": []map[string]any{{"name": c.presence, "type": 0}},
			"status":     "online",
			"afk":        false,
		},
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("send presence: %w", err)
	}
	return nil
}

func (c *Connector) sendHeartbeat(conn *websocket.Conn, writeMu *sync.Mutex, seq int64) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	payload := map[string]any{
		"op": 1,
		"d":  seq,
	}
	if err := conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("send heartbeat: %w", err)
	}
	return nil
}
