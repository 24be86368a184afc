package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const claimsKey = "claims"

// Verifier checks HMAC-signed bearer tokens. Token issuance lives with the
// account service.
type Verifier struct {
	secret []byte
	method string
}

// NewVerifier accepts tokens signed with secret using algorithm (HS256,
// HS384 or HS512).
func NewVerifier(secret, algorithm string) *Verifier {
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	return &Verifier{secret: []byte(secret), method: algorithm}
}

// Parse validates tokenStr and returns its claims.
func (v *Verifier) Parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok || token.Method.Alg() != v.method {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token.
func (v *Verifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := v.Parse(parts[1])
		if err != nil {
			var verr *jwt.ValidationError
			if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// subject returns the "sub" claim set by Middleware.
func subject(c *gin.Context) string {
	claims, ok := c.Get(claimsKey)
	if !ok {
		return ""
	}
	mc, ok := claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := mc["sub"].(string)
	return sub
}

// authorize aborts with 403 unless userID is the token subject.
func authorize(c *gin.Context, userID string) bool {
	if sub := subject(c); sub == "" || sub != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_id does not match token subject"})
		return false
	}
	return true
}
