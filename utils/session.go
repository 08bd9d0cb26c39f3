package utils

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionName = "pcv_session"

var store *sessions.CookieStore

// InitSessionStore configures the cookie-backed session used for the
// cart and the age-verification flag.
func InitSessionStore(secret string) {
	gob.Register(map[uint]int{})
	store = sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func getSession(c *gin.Context) *sessions.Session {
	// store.Get returns a fresh session on decode errors, which is the
	// behavior we want for tampered or expired cookies.
	s, _ := store.Get(c.Request, sessionName)
	return s
}

// SessionID returns a stable identifier for the visitor, assigning one
// on first use.
func SessionID(c *gin.Context) string {
	s := getSession(c)
	if id, ok := s.Values["sid"].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	s.Values["sid"] = id
	_ = s.Save(c.Request, c.Writer)
	return id
}

// GetCart returns the session cart as a product-id -> quantity map.
// The returned map is never nil.
func GetCart(c *gin.Context) map[uint]int {
	s := getSession(c)
	if cart, ok := s.Values["cart"].(map[uint]int); ok {
		return cart
	}
	return map[uint]int{}
}

func SaveCart(c *gin.Context, cart map[uint]int) error {
	s := getSession(c)
	s.Values["cart"] = cart
	return s.Save(c.Request, c.Writer)
}

func ClearCart(c *gin.Context) error {
	s := getSession(c)
	delete(s.Values, "cart")
	return s.Save(c.Request, c.Writer)
}

func IsAgeVerified(c *gin.Context) bool {
	s := getSession(c)
	verified, ok := s.Values["age_verified"].(bool)
	return ok && verified
}

func SetAgeVerified(c *gin.Context) error {
	s := getSession(c)
	s.Values["age_verified"] = true
	return s.Save(c.Request, c.Writer)
}
