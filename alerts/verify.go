package alerts

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/gateway"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Verification codes ride a 5-minute TOTP period so the code in the text
// message survives SMS delivery delays. The per-user secret lives in redis
// for the same window and is discarded on success.
const (
	verifyPeriod = 5 * time.Minute
	verifyTTL    = 2 * verifyPeriod
)

func verifyKey(userID uint) string {
	return fmt.Sprintf("%d:phone_verify", userID)
}

// RequestVerification texts a one-time code to the caller's saved phone
// number. Requires redis; without it the handshake cannot hold state
// between the two requests.
func (s *Service) RequestVerification(c *gin.Context) {
	if s.Redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "verification is not available", "code": "unavailable"})
		return
	}
	userID := gateway.UserID(c)

	settings, found, err := s.settingsFor(userID)
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	if !found || settings.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no phone number configured", "code": "validation_error"})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "hridamrit", AccountName: settings.PhoneNumber})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not generate code", "code": "internal_error"})
		return
	}
	code, err := totp.GenerateCodeCustom(key.Secret(), time.Now(), verifyOpts())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not generate code", "code": "internal_error"})
		return
	}

	ctx := c.Request.Context()
	if err := s.Redis.Set(ctx, verifyKey(userID), key.Secret(), verifyTTL).Err(); err != nil {
		s.Logger.WithError(err).Error("failed to store verification secret")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not generate code", "code": "internal_error"})
		return
	}

	msg := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(verifyPeriod.Minutes()))
	if _, err := s.sendSMS(ctx, settings.PhoneNumber, "Verification", msg); err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification code sent", "to": settings.PhoneNumber})
}

type confirmRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// ConfirmVerification checks the submitted code against the stored secret
// and marks the phone number verified.
func (s *Service) ConfirmVerification(c *gin.Context) {
	if s.Redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "verification is not available", "code": "unavailable"})
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "validation_error"})
		return
	}
	userID := gateway.UserID(c)
	ctx := c.Request.Context()

	secret, err := s.Redis.Get(ctx, verifyKey(userID)).Result()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no pending verification, request a new code", "code": "validation_error"})
		return
	}

	ok, err := totp.ValidateCustom(req.Code, secret, time.Now(), verifyOpts())
	if err != nil || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "wrong or expired code", "code": "wrong_code"})
		return
	}

	res := s.Db.Model(&health_fields.AlertSettings{}).Where("user_id = ?", userID).Update("phone_verified", true)
	if res.Error != nil {
		s.Logger.WithError(res.Error).Error("failed to mark phone verified")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update settings", "code": "database_error"})
		return
	}
	s.Redis.Del(ctx, verifyKey(userID))

	c.JSON(http.StatusOK, gin.H{"message": "phone number verified"})
}

func verifyOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period: uint(verifyPeriod.Seconds()),
		Skew:   1,
		Digits: otp.DigitsSix,
	}
}
