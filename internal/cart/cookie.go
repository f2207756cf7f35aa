package cart

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	CookieName = "cart"
	cookieTTL  = 30 * 24 * time.Hour
	maxLines   = 100
)

func Encode(c *Cart) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func Decode(s string) (*Cart, error) {
	c := &Cart{}
	if s == "" {
		return c, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cart cookie: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("cart cookie: %w", err)
	}
	if len(c.Lines) > maxLines {
		c.Lines = c.Lines[:maxLines]
	}
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ID != "" && l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
	return c, nil
}

// FromRequest never fails: a missing or corrupt cookie is an empty cart.
func FromRequest(r *http.Request) *Cart {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return &Cart{}
	}
	c, err := Decode(ck.Value)
	if err != nil {
		return &Cart{}
	}
	return c
}

func Cookie(c *Cart) (*http.Cookie, error) {
	v, err := Encode(c)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    v,
		Path:     "/",
		Expires:  time.Now().Add(cookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
