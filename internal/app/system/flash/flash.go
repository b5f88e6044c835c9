// Package flash carries one-shot messages across a redirect in a signed
// session cookie.
package flash

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Message kinds                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Message is a single flash.
type Message struct {
	Kind Kind
	Text string
}

const (
	DefaultSessionName = "sofi-session"
	flashKey           = "_flash"
)

func init() {
	gob.Register(Message{})
}

// Manager reads and writes flashes. A nil *Manager stores nothing.
type Manager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewManager builds a cookie-backed Manager. An empty sessionKey generates a
// random key, so flashes do not survive a restart; that is logged.
// secure marks cookies Secure with SameSite=None; otherwise SameSite=Lax
// so plain-http development works.
func NewManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if name == "" {
		name = DefaultSessionName
	}

	key := []byte(sessionKey)
	switch {
	case sessionKey == "":
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("flash: generate session key")
		}
		logger.Warn("session key not set; using a random key for this process")
	case len(sessionKey) < 32:
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   600,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("flash session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &Manager{store: store, name: name, log: logger}, nil
}

// Add queues a message for the next page that calls Pop.
func (m *Manager) Add(w http.ResponseWriter, r *http.Request, kind Kind, text string) error {
	if m == nil {
		return nil
	}
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		// An unreadable cookie (rotated key) is replaced by a fresh session.
		m.log.Debug("flash: discarding unreadable session", zap.Error(err))
	}
	sess.AddFlash(Message{Kind: kind, Text: text}, flashKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("flash: save session: %w", err)
	}
	return nil
}

// Pop returns and clears the queued messages. Errors are logged and yield no
// messages.
func (m *Manager) Pop(w http.ResponseWriter, r *http.Request) []Message {
	if m == nil {
		return nil
	}
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		m.log.Debug("flash: unreadable session", zap.Error(err))
		return nil
	}
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		m.log.Warn("flash: clear session failed", zap.Error(err))
	}
	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(Message); ok {
			out = append(out, msg)
		}
	}
	return out
}
