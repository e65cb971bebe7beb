// Package alerts manages per-user SMS alert settings, relays alert messages
// through Twilio and runs the phone verification handshake.
package alerts

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/gateway"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	Db     *gorm.DB
	Config health_fields.Config
	Logger *logrus.Logger
	Redis  *redis.Client
	Client *http.Client
}

func (s *Service) httpClient() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

type settingsRequest struct {
	PhoneNumber      string `json:"phone_number" binding:"required,phone"`
	HighHeartRate    bool   `json:"high_heart_rate"`
	AbnormalBP       bool   `json:"abnormal_bp"`
	MissedMedication bool   `json:"missed_medication"`
	DailyReminder    bool   `json:"daily_reminder"`
}

// GetSettings returns the caller's alert configuration. A user who never
// saved settings gets configured == false, not an error.
func (s *Service) GetSettings(c *gin.Context) {
	settings, found, err := s.settingsFor(gateway.UserID(c))
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"configured": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured": true, "settings": settings})
}

// SaveSettings upserts the caller's alert configuration on user_id. Saving
// a new phone number resets the verified flag; the number must be verified
// again before test alerts go out.
func (s *Service) SaveSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "validation_error"})
		return
	}
	userID := gateway.UserID(c)

	prev, found, err := s.settingsFor(userID)
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}

	settings := health_fields.AlertSettings{
		UserID:           userID,
		PhoneNumber:      req.PhoneNumber,
		HighHeartRate:    req.HighHeartRate,
		AbnormalBP:       req.AbnormalBP,
		MissedMedication: req.MissedMedication,
		DailyReminder:    req.DailyReminder,
	}
	if found && prev.PhoneNumber == req.PhoneNumber {
		settings.PhoneVerified = prev.PhoneVerified
	}

	res := s.Db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"phone_number", "high_heart_rate", "abnormal_bp",
			"missed_medication", "daily_reminder", "phone_verified",
			"updated_at",
		}),
	}).Create(&settings)
	if res.Error != nil {
		s.Logger.WithError(res.Error).Error("failed to save alert settings")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not save alert settings", "code": "database_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"configured": true, "settings": settings})
}

func (s *Service) settingsFor(userID uint) (health_fields.AlertSettings, bool, error) {
	var settings health_fields.AlertSettings
	res := s.Db.Where("user_id = ?", userID).First(&settings)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return settings, false, nil
	}
	if res.Error != nil {
		s.Logger.WithError(res.Error).Error("failed to load alert settings")
		return settings, false, apperr.Wrap(res.Error, apperr.ErrDatabase, "could not load alert settings")
	}
	return settings, true, nil
}
