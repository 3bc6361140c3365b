package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetSessionCookie stores token in an http-only cookie next to the JSON response.
func SetSessionCookie(c *gin.Context, name, token string, ttl time.Duration, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite(secure),
	})
}

func ClearSessionCookie(c *gin.Context, name string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite(secure),
	})
}

// SameSite=None is only accepted by browsers on secure cookies.
func sameSite(secure bool) http.SameSite {
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Sessions issues session tokens and mirrors them into a cookie.
type Sessions struct {
	JWT    *JWTManager
	Secure bool
}

func (s Sessions) Issue(c *gin.Context, cookie, subjectID, role string) (string, error) {
	token, _, err := s.JWT.Sign(subjectID, role)
	if err != nil {
		return "", err
	}
	SetSessionCookie(c, cookie, token, s.JWT.TTL(), s.Secure)
	return token, nil
}

func (s Sessions) Clear(c *gin.Context, cookie string) {
	ClearSessionCookie(c, cookie, s.Secure)
}
