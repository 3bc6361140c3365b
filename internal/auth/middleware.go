package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperr"
	"marketplace/internal/domain/shop"
	"marketplace/internal/domain/user"
	"marketplace/internal/store"
)

const (
	UserCookie   = "token"
	SellerCookie = "seller_token"

	ctxUserKey   = "auth.user"
	ctxSellerKey = "auth.seller"
)

// Gate authenticates requests and loads the caller from the store.
type Gate struct {
	jwt   *JWTManager
	users store.Users
	shops store.Shops
}

func NewGate(jwtMgr *JWTManager, users store.Users, shops store.Shops) *Gate {
	return &Gate{jwt: jwtMgr, users: users, shops: shops}
}

// RequireUser admits requests carrying a buyer session token.
func (g *Gate) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := g.claims(c, UserCookie, RoleUser)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		u, err := g.users.ByID(c.Request.Context(), claims.Subject)
		if err != nil {
			apperr.Respond(c, subjectError(err))
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// RequireSeller admits requests carrying a shop session token.
func (g *Gate) RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := g.claims(c, SellerCookie, RoleSeller)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		s, err := g.shops.ByID(c.Request.Context(), claims.Subject)
		if err != nil {
			apperr.Respond(c, subjectError(err))
			return
		}
		c.Set(ctxSellerKey, s)
		c.Next()
	}
}

// claims tries the bearer header first and falls back to the role's cookie
// when the header is absent, invalid, or carries another role.
func (g *Gate) claims(c *gin.Context, cookie, role string) (*Claims, error) {
	var firstErr error
	cookieTok, _ := c.Cookie(cookie)
	for _, token := range []string{bearer(c), cookieTok} {
		if token == "" {
			continue
		}
		claims, err := g.jwt.Parse(token)
		if err == nil && claims.Role == role {
			return claims, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, apperr.Auth("Please login to continue")
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func subjectError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Auth("Please login to continue")
	}
	return err
}

// CurrentUser returns the buyer loaded by RequireUser.
func CurrentUser(c *gin.Context) user.User {
	u, _ := c.Get(ctxUserKey)
	v, _ := u.(user.User)
	return v
}

// CurrentSeller returns the shop loaded by RequireSeller.
func CurrentSeller(c *gin.Context) shop.Shop {
	s, _ := c.Get(ctxSellerKey)
	v, _ := s.(shop.Shop)
	return v
}
