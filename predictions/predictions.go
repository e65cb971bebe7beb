// Package predictions relays clinical inputs to the external model server
// and keeps an append-only history of every classification returned.
package predictions

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/gateway"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	Db     *gorm.DB
	Config health_fields.Config
	Logger *logrus.Logger
	Client *http.Client
}

func (s *Service) httpClient() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// PredictionRequest carries the eleven clinical inputs. Height arrives in
// centimeters from the form and is converted to meters at the model
// boundary. The three lifestyle flags are 0/1, so required alone would
// reject legitimate zeros.
type PredictionRequest struct {
	Age              int     `json:"age" binding:"required,min=1,max=120"`
	Gender           int     `json:"gender" binding:"required,oneof=1 2"`
	Height           float64 `json:"height" binding:"required,min=50,max=250"`
	Weight           float64 `json:"weight" binding:"required,min=20,max=400"`
	SystolicBP       int     `json:"ap_hi" binding:"required,min=50,max=300"`
	DiastolicBP      int     `json:"ap_lo" binding:"required,min=30,max=200"`
	Cholesterol      int     `json:"cholesterol" binding:"required,oneof=1 2 3"`
	Glucose          int     `json:"gluc" binding:"required,oneof=1 2 3"`
	Smoking          int     `json:"smoke" binding:"oneof=0 1"`
	Alcohol          int     `json:"alco" binding:"oneof=0 1"`
	PhysicalActivity int     `json:"active" binding:"oneof=0 1"`
}

// BMI in kg/m² from the request's centimeter height.
func (r PredictionRequest) BMI() float64 {
	m := r.Height / 100
	return r.Weight / (m * m)
}

type modelRequest struct {
	Age         int     `json:"age"`
	Gender      int     `json:"gender"`
	Height      float64 `json:"height"` // meters
	Weight      float64 `json:"weight"`
	ApHi        int     `json:"ap_hi"`
	ApLo        int     `json:"ap_lo"`
	Cholesterol int     `json:"cholesterol"`
	Gluc        int     `json:"gluc"`
	Smoke       int     `json:"smoke"`
	Alco        int     `json:"alco"`
	Active      int     `json:"active"`
	BMI         float64 `json:"bmi"`
}

type modelResponse struct {
	PredictedClass int     `json:"predicted_class"`
	Probability    float64 `json:"probability"`
}

// Predict validates the inputs, relays them to the model server, persists
// the classification and echoes it back.
func (s *Service) Predict(c *gin.Context) {
	var req PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "validation_error"})
		return
	}

	if s.Config.ModelBackendURL == "" {
		err := apperr.WithMessage(apperr.ErrConfiguration, "model backend not configured")
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}

	heightMeters := req.Height / 100
	payload := modelRequest{
		Age:         req.Age,
		Gender:      req.Gender,
		Height:      heightMeters,
		Weight:      req.Weight,
		ApHi:        req.SystolicBP,
		ApLo:        req.DiastolicBP,
		Cholesterol: req.Cholesterol,
		Gluc:        req.Glucose,
		Smoke:       req.Smoking,
		Alco:        req.Alcohol,
		Active:      req.PhysicalActivity,
		BMI:         req.BMI(),
	}

	result, err := s.classify(c, payload)
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}

	label := "Low Risk"
	if result.PredictedClass == 1 {
		label = "High Risk"
	}

	record := health_fields.PredictionRecord{
		UserID:           gateway.UserID(c),
		Age:              req.Age,
		Gender:           req.Gender,
		Height:           heightMeters,
		Weight:           req.Weight,
		SystolicBP:       req.SystolicBP,
		DiastolicBP:      req.DiastolicBP,
		Cholesterol:      req.Cholesterol,
		Glucose:          req.Glucose,
		Smoking:          req.Smoking,
		Alcohol:          req.Alcohol,
		PhysicalActivity: req.PhysicalActivity,
		PredictionResult: label,
		// raw probability; clients render the percentage
		RiskScore: result.Probability,
	}
	if res := s.Db.Create(&record); res.Error != nil {
		s.Logger.WithError(res.Error).Error("failed to persist prediction")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not save prediction", "code": "database_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prediction":      label,
		"predicted_class": result.PredictedClass,
		"probability":     result.Probability,
		"risk_percentage": fmt.Sprintf("%.1f", result.Probability*100),
		"bmi":             req.BMI(),
		"id":              record.ID,
	})
}

func (s *Service) classify(c *gin.Context, payload modelRequest) (modelResponse, error) {
	var result modelResponse

	raw, err := json.Marshal(payload)
	if err != nil {
		return result, err
	}
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, s.Config.ModelBackendURL+"/predict_fit", bytes.NewReader(raw))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient().Do(req)
	if err != nil {
		health_fields.RecordUpstream("model_server", "predict_fit", http.MethodPost, 0, err, time.Since(start))
		return result, apperr.Wrap(err, apperr.ErrUpstream, "prediction service is unavailable")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	health_fields.RecordUpstream("model_server", "predict_fit", http.MethodPost, resp.StatusCode, nil, time.Since(start))

	if resp.StatusCode/100 != 2 {
		s.Logger.WithFields(logrus.Fields{
			"status": resp.Status,
			"body":   string(body),
		}).Error("model server rejected prediction request")
		return result, apperr.WithMessage(apperr.ErrUpstream, "prediction service is unavailable")
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, apperr.Wrap(err, apperr.ErrUpstream, "could not decode prediction response")
	}
	return result, nil
}

// History lists the caller's past predictions, newest first.
func (s *Service) History(c *gin.Context) {
	var records []health_fields.PredictionRecord
	res := s.Db.Where("user_id = ?", gateway.UserID(c)).Order("created_at desc").Find(&records)
	if res.Error != nil {
		s.Logger.WithError(res.Error).Error("failed to load prediction history")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not load predictions", "code": "database_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": records, "count": len(records)})
}

// Latest returns the most recent prediction, or 404 when none exist yet.
func (s *Service) Latest(c *gin.Context) {
	var record health_fields.PredictionRecord
	res := s.Db.Where("user_id = ?", gateway.UserID(c)).Order("created_at desc").First(&record)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "no predictions yet", "code": "not_found"})
		return
	}
	if res.Error != nil {
		s.Logger.WithError(res.Error).Error("failed to load latest prediction")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not load predictions", "code": "database_error"})
		return
	}
	c.JSON(http.StatusOK, record)
}
