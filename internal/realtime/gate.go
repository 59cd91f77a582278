package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"leadflow/internal/identity"
	"leadflow/internal/platform/metrics"
)

// inboundMessage is what clients may send after admission. Only "join" has an
// effect, and it is membership bookkeeping only: the identity comes from
// admission, never from the message.
type inboundMessage struct {
	Event string `json:"event"`
	Data  string `json:"data,omitempty"`
}

// Gate accepts realtime connections, authenticates the handshake credential,
// and binds admitted channels into the registry. Each attempt moves
// Pending -> Admitted or Pending -> Rejected, both terminal: a rejected
// attempt never registers a channel, and an admitted one stays bound until
// disconnect.
type Gate struct {
	verifier identity.Verifier
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	origins  []string
}

func NewGate(verifier identity.Verifier, registry *Registry, logger *slog.Logger, m *metrics.Metrics, allowedOrigins []string) *Gate {
	return &Gate{
		verifier: verifier,
		registry: registry,
		logger:   logger,
		metrics:  m,
		origins:  allowedOrigins,
	}
}

// ServeHTTP runs the Pending -> Admitted|Rejected state machine for one
// attempt and, when admitted, serves the channel until disconnect.
func (g *Gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	credential := credentialFromRequest(r)
	device := ParseUserAgent(r.Header.Get("User-Agent"))

	opts := &websocket.AcceptOptions{}
	if len(g.origins) > 0 {
		opts.OriginPatterns = g.origins
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		return
	}

	id, err := g.verifier.Verify(credential)
	if err != nil {
		g.metrics.IncRejected()
		g.logger.WarnContext(r.Context(), "connection rejected",
			"device", device,
			"error", err,
		)
		_ = conn.Close(websocket.StatusPolicyViolation, "auth failure")
		return
	}

	ch := newWSChannel(id.ID, conn)
	g.registry.Bind(id.ID, ch)
	defer func() {
		g.registry.Unbind(ch)
		ch.Close("disconnect")
	}()

	g.logger.InfoContext(r.Context(), "connection admitted",
		"identity_id", id.ID,
		"role", id.Role,
		"device", device,
	)

	ctx := r.Context()
	go ch.writeLoop(ctx)
	_ = wsjson.Write(ctx, conn, frame{Event: "ready"})

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Event != "join" {
			continue
		}
		// Re-assert membership for the admitted identity only. A client
		// asking to join someone else's room is ignored, not honored.
		if msg.Data != "" && msg.Data != id.ID {
			g.logger.WarnContext(ctx, "join for foreign identity ignored",
				"identity_id", id.ID,
				"requested", msg.Data,
			)
		}
		g.registry.Bind(id.ID, ch)
	}
}

// credentialFromRequest extracts the bearer credential from the handshake.
// Browsers cannot set headers on websocket dials, so a token query parameter
// is accepted as well.
func credentialFromRequest(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return r.URL.Query().Get("token")
}
