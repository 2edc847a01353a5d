// internal/message/message.go
//
// One-shot flash messages carried in a cookie.
//
// Context
//   Browser flows answer most POSTs with a redirect, so the outcome ("Entry
//   updated successfully", "Access denied") must survive one round trip.
//   Add appends a message to the `dsr_flash` cookie; the next page render
//   calls Pop, which returns the queued messages and clears the cookie.
//
//   The cookie holds display text only, base64url-encoded JSON.  Templates
//   escape it on output, so it is not signed.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package message

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const cookieName = "dsr_flash"

// Categories used by the templates for styling.
const (
	Success = "success"
	Error   = "error"
	Info    = "info"
	Warning = "warning"
)

// Flash is one queued message.
type Flash struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

// Add queues a message for the next page the client loads.  Messages already
// waiting in the request cookie are kept.
func Add(w http.ResponseWriter, r *http.Request, category, text string) {
	list := append(read(r), Flash{Category: category, Text: text})
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued messages and clears the cookie.
func Pop(w http.ResponseWriter, r *http.Request) []Flash {
	list := read(r)
	if len(list) == 0 {
		return nil
	}
	Clear(w)
	return list
}

// Peek returns the queued messages without clearing them.  Pair it with
// Clear once the page that shows them has rendered.
func Peek(r *http.Request) []Flash { return read(r) }

// Clear drops any queued messages.
func Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func read(r *http.Request) []Flash {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var list []Flash
	if json.Unmarshal(raw, &list) != nil {
		return nil
	}
	return list
}
