package gateway

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxLoginAttempts = 5

// AuthService carries the account endpoints: register, login and me.
type AuthService struct {
	Db     *gorm.DB
	Redis  *redis.Client
	Config health_fields.Config
	Logger *logrus.Logger
	Auth   *JWTAuth
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Fullname string `json:"full_name"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUser registers a new account and returns a session token for it.
func (s *AuthService) CreateUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "bad_request"})
		return
	}

	user := health_fields.User{
		Email:    req.Email,
		Password: req.Password,
		Fullname: req.Fullname,
		Phone:    req.Phone,
	}
	user.SanitizeEmail()
	if err := user.HashPassword(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "code": "internal_error"})
		return
	}
	if err := s.Db.Create(&user).Error; err != nil {
		s.Logger.Printf("error in creating user: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "email already in use", "code": "duplicate_email"})
		return
	}

	token, err := s.Auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "code": "jwt_failed"})
		return
	}
	c.Header("Authorization", token)
	c.JSON(http.StatusCreated, gin.H{"authorization": token, "user": user})
}

// LoginHandler hridamrit signin endpoint.
func (s *AuthService) LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.Logger.Printf("The request is wrong. %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "bad_request"})
		return
	}

	email := strings.ToLower(req.Email)
	if s.loginThrottled(c, email) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "too many failed attempts, try again later", "code": "login_throttled"})
		return
	}

	user, err := health_fields.GetUserByEmail(email, s.Db)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "wrong email or password", "code": "wrong_credentials"})
		return
	}
	if err := user.ComparePassword(req.Password); err != nil {
		s.recordFailedLogin(c, email)
		c.JSON(http.StatusBadRequest, gin.H{"message": "wrong email or password", "code": "wrong_credentials"})
		return
	}
	s.clearFailedLogins(c, email)

	token, err := s.Auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "code": "jwt_failed"})
		return
	}
	c.Header("Authorization", token)
	c.JSON(http.StatusOK, gin.H{"authorization": token, "user": user})
}

// Me returns the current user by token.
func (s *AuthService) Me(c *gin.Context) {
	userID := UserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing user id", "code": "unauthorized"})
		return
	}
	user, err := health_fields.GetUserByID(userID, s.Db)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "database_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// loginThrottled checks the failed-attempt counter. Without redis the
// counter is disabled, as in tests.
func (s *AuthService) loginThrottled(c *gin.Context, email string) bool {
	if s.Redis == nil {
		return false
	}
	count, err := s.Redis.Get(c.Request.Context(), loginCountKey(email)).Int()
	if err != nil && err != redis.Nil {
		return false
	}
	return count >= maxLoginAttempts
}

func (s *AuthService) recordFailedLogin(c *gin.Context, email string) {
	if s.Redis == nil {
		return
	}
	ctx := c.Request.Context()
	key := loginCountKey(email)
	if err := s.Redis.Incr(ctx, key).Err(); err != nil {
		s.Logger.Printf("error incrementing login counter: %v", err)
		return
	}
	s.Redis.Expire(ctx, key, time.Hour)
}

func (s *AuthService) clearFailedLogins(c *gin.Context, email string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(c.Request.Context(), loginCountKey(email))
}

func loginCountKey(email string) string {
	return fmt.Sprintf("%s:login_counts", email)
}
