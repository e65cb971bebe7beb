package health_fields

import (
	"time"

	"gorm.io/gorm"
)

// FitnessLink is the per-user record of Google Fit credentials and the most
// recently synced summary values. Exactly zero or one row exists per user;
// the row is created on the first successful token exchange and mutated,
// never deleted, on every subsequent sync.
//
// TokenExpiry is advisory only: nothing consults it before using the access
// token, and no refresh exchange happens anywhere in this flow. Once the
// token expires syncs will fail upstream with a 401 until the user relinks.
type FitnessLink struct {
	gorm.Model
	UserID       uint   `json:"user_id" gorm:"uniqueIndex"`
	AccessToken  string `json:"-" gorm:"not null"`
	RefreshToken string `json:"-"`
	TokenExpiry  *time.Time `json:"token_expiry"`

	// Last-known-value summaries over the trailing 7-day window,
	// overwritten wholesale on each sync.
	Height   *int64 `json:"height"` // centimeters
	Weight   *int64 `json:"weight"` // kilograms
	Steps    *int64 `json:"steps"`
	Calories *int64 `json:"calories"`

	LastSynced *time.Time `json:"last_synced"`
}

// PredictionRecord is an append-only snapshot of the eleven clinical inputs
// plus the classification the model server returned for them.
type PredictionRecord struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"index"`

	Age              int     `json:"age"`
	Gender           int     `json:"gender"`
	Height           float64 `json:"height"` // meters, as sent to the model
	Weight           float64 `json:"weight"` // kilograms
	SystolicBP       int     `json:"systolic_bp"`
	DiastolicBP      int     `json:"diastolic_bp"`
	Cholesterol      int     `json:"cholesterol"`
	Glucose          int     `json:"glucose"`
	Smoking          int     `json:"smoking"`
	Alcohol          int     `json:"alcohol"`
	PhysicalActivity int     `json:"physical_activity"`

	PredictionResult string  `json:"prediction_result"`
	RiskScore        float64 `json:"risk_score"`
}

// AlertSettings holds a user's SMS alert configuration, one row per user,
// upserted on user_id.
type AlertSettings struct {
	gorm.Model
	UserID      uint   `json:"user_id" gorm:"uniqueIndex"`
	PhoneNumber string `json:"phone_number" gorm:"not null"`

	HighHeartRate    bool `json:"high_heart_rate" gorm:"default:false"`
	AbnormalBP       bool `json:"abnormal_bp" gorm:"default:false"`
	MissedMedication bool `json:"missed_medication" gorm:"default:false"`
	DailyReminder    bool `json:"daily_reminder" gorm:"default:false"`

	PhoneVerified bool `json:"phone_verified" gorm:"default:false"`
}
