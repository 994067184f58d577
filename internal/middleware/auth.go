package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
)

var errNoSecret = errors.New("auth: signing secret not configured")

const (
	ctxProfile     = "profile"
	ctxDisplayName = "display_name"
)

// Claims are the identity-provider claims the service reads.
type Claims struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	jwt.RegisteredClaims
}

// DisplayName picks name, then preferred_username, then the subject.
func (c *Claims) DisplayName() string {
	for _, v := range []string{c.Name, c.PreferredUsername, c.Subject} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ProfileSyncer upserts the caller's profile on every authenticated request.
type ProfileSyncer interface {
	EnsureProfile(ctx context.Context, id, email, fullName string) (*model.Profile, error)
}

// Auth verifies the HS256 bearer token, syncs the profile and stores it on the context.
// An empty secret rejects every token.
func Auth(secret, issuer string, profiles ProfileSyncer, log *zap.Logger) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errs.ErrUnauthenticated.Error()})
			return
		}

		claims := &Claims{}
		tkn, err := parser.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
			if secret == "" {
				return nil, errNoSecret
			}
			return []byte(secret), nil
		})
		if err != nil || !tkn.Valid || claims.Subject == "" {
			log.Debug("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token inválido"})
			return
		}

		profile, err := profiles.EnsureProfile(c.Request.Context(), claims.Subject, claims.Email, claims.DisplayName())
		if err != nil {
			log.Error("profile sync failed", zap.String("subject", claims.Subject), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Set(ctxProfile, profile)
		c.Set(ctxDisplayName, claims.DisplayName())
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentProfile(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errs.ErrUnauthenticated.Error()})
			return
		}
		if !p.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errs.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

func CurrentProfile(c *gin.Context) *model.Profile {
	v, ok := c.Get(ctxProfile)
	if !ok {
		return nil
	}
	p, _ := v.(*model.Profile)
	return p
}

// CurrentName is the caller's display name, used as solicitante, technician and admin name.
func CurrentName(c *gin.Context) string {
	return c.GetString(ctxDisplayName)
}

// SetIdentity is for handler tests that bypass token parsing.
func SetIdentity(c *gin.Context, p *model.Profile, displayName string) {
	c.Set(ctxProfile, p)
	c.Set(ctxDisplayName, displayName)
}
