package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/mkamenev/storefront/internal/models"
	"github.com/mkamenev/storefront/internal/session"
)

// AccountID extracts the authenticated account from the access-token cookie.
// Returns nil without error for anonymous visitors; only a present-but-bad
// token is an error.
func AccountID(c echo.Context, jwtSecret []byte) (*uint, error) {
	cookie, err := c.Cookie("accessToken")
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	subRaw, ok := claims["sub"].(float64)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
	}

	id := uint(subRaw)
	return &id, nil
}

// Identity resolves the cart owner: the account when authenticated, otherwise
// the anonymous session token (provisioned on the spot if absent).
func Identity(c echo.Context, jwtSecret []byte) (models.CartIdentity, error) {
	accountID, err := AccountID(c, jwtSecret)
	if err != nil {
		return models.CartIdentity{}, err
	}
	if accountID != nil {
		return models.CartIdentity{AccountID: accountID}, nil
	}

	token := session.EnsureToken(c)
	return models.CartIdentity{SessionToken: &token}, nil
}

func asHTTPError(err error) (*echo.HTTPError, bool) {
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
