package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// ErrNotFound is returned by Load when no session has been persisted yet.
var ErrNotFound = errors.New("session: no persisted state")

// Cookie is the persisted cookie shape. It is opaque to every layer
// except this package; the browser layer receives cookies only through
// CookieParams.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

// State is the durable authenticated session: cookies plus the identity
// they were minted under. One writer, no cross-process sharing.
type State struct {
	Cookies   []Cookie `json:"cookies"`
	UserAgent string   `json:"user_agent"`
	SavedAt   string   `json:"saved_at"`
}

// Store persists session state as a JSON file.
type Store struct {
	path string
}

// NewStore returns a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the persisted session. ErrNotFound means no interactive
// login has happened yet; any other error is an I/O or format problem.
func (s *Store) Load() (*State, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: read %s: %w", s.path, err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("session: parse %s: %w", s.path, err)
	}
	if len(st.Cookies) == 0 {
		return nil, ErrNotFound
	}
	return &st, nil
}

// Save writes the session atomically (temp file + rename) so a crash
// mid-write never corrupts a previously valid session.
func (s *Store) Save(st *State) error {
	st.SavedAt = time.Now().Format("2006-01-02 15:04:05")
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("session: rename: %w", err)
	}
	return nil
}

// FromBrowserCookies converts live browser cookies into persistable form.
func FromBrowserCookies(cookies []*proto.NetworkCookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

// CookieParams converts the persisted cookies into the shape the
// browser layer injects at session start.
func (st *State) CookieParams() []*proto.NetworkCookieParam {
	out := make([]*proto.NetworkCookieParam, 0, len(st.Cookies))
	for _, c := range st.Cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		if c.SameSite != "" {
			p.SameSite = proto.NetworkCookieSameSite(c.SameSite)
		}
		out = append(out, p)
	}
	return out
}

// CookieNames lists the persisted cookie names, for the weak
// session-marker expiry signal.
func (st *State) CookieNames() []string {
	names := make([]string, 0, len(st.Cookies))
	for _, c := range st.Cookies {
		names = append(names, c.Name)
	}
	return names
}
