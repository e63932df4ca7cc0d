package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const sessionCookieName = "naru_session"

// cookieManager issues and validates signed session-ID cookies. Only the ID
// travels to the client; all state stays server-side in the session store.
type cookieManager struct {
	codec *securecookie.SecureCookie
}

func newCookieManager(secret string) *cookieManager {
	return &cookieManager{codec: securecookie.New([]byte(secret), nil)}
}

// sessionID returns the caller's session ID, minting and setting a new one
// when the cookie is absent or fails signature verification.
func (c *cookieManager) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		var sid string
		if err := c.codec.Decode(sessionCookieName, cookie.Value, &sid); err == nil && sid != "" {
			return sid
		}
	}

	sid := uuid.NewString()
	encoded, err := c.codec.Encode(sessionCookieName, sid)
	if err != nil {
		// Encoding only fails on a broken codec; the request still gets
		// a working (cookieless) session for this one turn.
		return sid
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}
