package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/api/metrics"
	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
	"github.com/Ovii2/EventSync/internal/pkg/token"
)

const (
	defaultWriteTimeout = 5 * time.Second
	tokenQueryParam     = "access_token"
	eventQueryParam     = "event"
)

// Gateway upgrades authenticated requests to websockets and streams hub
// messages for the caller's direct queue and the requested event topics.
type Gateway struct {
	hub            *Hub
	validator      ports.CredentialValidator
	originPatterns []string
	writeTimeout   time.Duration
	log            zerolog.Logger
}

// NewGateway builds a Gateway. originPatterns are host patterns accepted for
// cross-origin handshakes; same-host requests are always accepted.
func NewGateway(hub *Hub, validator ports.CredentialValidator, originPatterns []string, log zerolog.Logger) *Gateway {
	return &Gateway{
		hub:            hub,
		validator:      validator,
		originPatterns: originPatterns,
		writeTimeout:   defaultWriteTimeout,
		log:            log.With().Str("component", "ws").Logger(),
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		http.Error(w, "missing credential", http.StatusUnauthorized)
		return
	}
	principal, err := g.validator.Validate(raw)
	if err != nil {
		msg := "invalid credential"
		if errors.Is(err, domain.ErrExpiredCredential) {
			msg = "credential expired"
		}
		http.Error(w, msg, http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: g.originPatterns})
	if err != nil {
		g.log.Warn().Err(err).Str("principal_id", principal.ID).Msg("websocket accept failed")
		return
	}
	defer func() { _ = conn.CloseNow() }()

	dests := []string{domain.PrincipalQueue(principal.ID)}
	for _, id := range r.URL.Query()[eventQueryParam] {
		if id = strings.TrimSpace(id); id != "" {
			dests = append(dests, domain.FeedbackTopic(id))
		}
	}
	sub := g.hub.Subscribe(dests...)
	defer sub.Close()

	metrics.WebSocketSubscribers.Inc()
	defer metrics.WebSocketSubscribers.Dec()
	g.log.Debug().Str("principal_id", principal.ID).Strs("destinations", dests).Msg("subscriber connected")

	// Inbound frames are not part of the protocol; CloseRead handles control
	// frames and cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			g.log.Debug().Str("principal_id", principal.ID).Msg("subscriber disconnected")
			return
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			if err := g.write(ctx, conn, msg); err != nil {
				g.log.Info().Err(err).Str("principal_id", principal.ID).Msg("websocket write failed")
				return
			}
		}
	}
}

func (g *Gateway) write(parent context.Context, conn *websocket.Conn, msg Message) error {
	ctx, cancel := context.WithTimeout(parent, g.writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		raw, _ := token.FromAuthorization(h)
		return raw
	}
	return r.URL.Query().Get(tokenQueryParam)
}
