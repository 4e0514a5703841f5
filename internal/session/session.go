// Package session keeps per-browser checkout state in signed cookies: the
// anonymous cart token and the shipping/contact form collected at the
// checkout-info step. Nothing here touches durable storage.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mkamenev/storefront/internal/models"
)

const (
	ContactCookie = "checkout_contact"
	TokenCookie   = "cart_session"

	contactTTL = 24 * time.Hour
)

type Store struct {
	Secret []byte
}

// SaveContact signs the contact snapshot into the checkout cookie. It stays
// readable across requests until an order consumes it or the TTL passes.
func (s *Store) SaveContact(c echo.Context, info models.ContactInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}

	claims := jwt.MapClaims{
		"contact": string(payload),
		"exp":     time.Now().Add(contactTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     ContactCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(contactTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// LoadContact returns the saved contact info, or (nil, nil) when the step was
// never completed. A tampered or expired cookie reads as absent.
func (s *Store) LoadContact(c echo.Context) (*models.ContactInfo, error) {
	cookie, err := c.Cookie(ContactCookie)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}
	raw, ok := claims["contact"].(string)
	if !ok {
		return nil, nil
	}

	var info models.ContactInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, errors.New("corrupt contact payload")
	}
	return &info, nil
}

func (s *Store) ClearContact(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     ContactCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// EnsureToken returns the anonymous session token, provisioning the cookie on
// first contact so a cart identity always exists before any cart mutation.
func EnsureToken(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}
