package discord

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/spirelore/spirebot/internal/replysync"
)

const (
	discordIntentGuilds          = 1 << 0
	discordIntentGuildMessages   = 1 << 9
	discordIntentDirectMessages  = 1 << 12
	discordIntentMessageContents = 1 << 15

	defaultHistoryLimit = 100
)

type Connector struct {
	token        string
	apiBase      string
	gatewayURL   string
	presence     string
	historyLimit int

	sync       *replysync.Synchronizer
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	botMu     sync.RWMutex
	botUserID string
}

type Option func(*Connector)

// WithPresence sets the activity text announced to the gateway after READY.
func WithPresence(presence string) Option {
	return func(connector *Connector) {
		connector.presence = strings.TrimSpace(presence)
	}
}

// WithHistoryLimit caps how many recent messages a reply scan fetches.
func WithHistoryLimit(limit int) Option {
	return func(connector *Connector) {
		if limit > 0 {
			connector.historyLimit = limit
		}
	}
}

// WithSendRate bounds outbound REST calls.
func WithSendRate(perSecond float64, burst int) Option {
	return func(connector *Connector) {
		if perSecond > 0 && burst > 0 {
			connector.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func New(token, apiBase, gatewayURL string, resolver replysync.QueryResolver, renderer replysync.Renderer, logger *slog.Logger, queryLogRoot string, queryLimit int, opts ...Option) *Connector {
	if strings.TrimSpace(apiBase) == "" {
		apiBase = "https://discord.com/api/v10"
	}
	if strings.TrimSpace(gatewayURL) == "" {
		gatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"
	}
	connector := &Connector{
		token:        strings.TrimSpace(token),
		apiBase:      strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		gatewayURL:   strings.TrimSpace(gatewayURL),
		historyLimit: defaultHistoryLimit,
		httpClient:   &http.Client{Timeout: 12 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(5), 5),
		logger:       logger.With("component", "connector", "connector", "discord"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(connector)
		}
	}
	connector.sync = replysync.New(connector, resolver, renderer, logger, queryLogRoot, queryLimit)
	return connector
}

func (c *Connector) Name() string {
	return "discord"
}

// BotUserID reports the identity learned from READY; empty before the first
// session is established.
func (c *Connector) BotUserID() string {
	c.botMu.RLock()
	defer c.botMu.RUnlock()
	return c.botUserID
}

func (c *Connector) setBotUserID(id string) {
	c.botMu.Lock()
	c.botUserID = strings.TrimSpace(id)
	c.botMu.Unlock()
}
