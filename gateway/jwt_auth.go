// Package gateway implements the auth and middleware logic shared across
// hridamrit services.
package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/hridamrit/hridamrit/health_fields"
)

// JWTAuth provides an encapsulation for jwt auth
type JWTAuth struct {
	Config health_fields.Config
	Key    []byte
}

// TokenClaims hridamrit standard claim
type TokenClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// Init initializes jwt auth. A configured key wins; otherwise a random one
// is generated, which invalidates outstanding sessions on restart.
func (j *JWTAuth) Init() {
	if j.Config.JWTKey != "" {
		j.Key = []byte(j.Config.JWTKey)
		return
	}
	key, _ := GenerateSecretKey()
	j.Key = []byte(key)
}

// GenerateSecretKey returns a random hex-encoded 16 byte key.
func GenerateSecretKey() (string, error) {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// GenerateJWT generates a HS256 token carrying the user's id and email.
func (j *JWTAuth) GenerateJWT(userID uint, email string) (string, error) {
	expiresAt := time.Now().Add(3 * time.Hour).UTC().Unix()

	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt,
			IssuedAt:  time.Now().Unix(),
			Issuer:    "hridamrit",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if j.Key == nil {
		return "", errors.New("empty jwt key")
	}
	return token.SignedString(j.Key)
}

// VerifyJWT validates the token signature and parses our claims out of it.
func (j *JWTAuth) VerifyJWT(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// AuthMiddleware is a JWT authorization middleware. It resolves the current
// user once and stores the id in the request context; handlers read it via
// UserID and never look the session up ambiently.
func (j *JWTAuth) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "empty header was sent",
				"code": "unauthorized"})
			return
		}

		claims, err := j.VerifyJWT(h)
		if e, ok := err.(*jwt.ValidationError); ok {
			if e.Errors&jwt.ValidationErrorExpired != 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has expired", "code": "jwt_expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Malformed token", "code": "jwt_malformed"})
			}
			return
		} else if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token", "code": "unauthorized"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated user's id from the request context, or
// zero when the request is unauthenticated.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
