package alerts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/gateway"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/sirupsen/logrus"
)

const testAlertBody = "This is a test alert from Hridamrit. Your SMS alert system is working correctly!"

// sendSMS relays one message through Twilio's REST API and returns the
// message sid. A non-empty alertType gets the app prefix so recipients can
// tell alerts apart from other traffic on the same number.
func (s *Service) sendSMS(ctx context.Context, to, alertType, message string) (string, error) {
	if s.Config.TwilioAccountSID == "" || s.Config.TwilioAuthToken == "" || s.Config.TwilioPhoneNumber == "" {
		return "", apperr.WithMessage(apperr.ErrConfiguration, "sms credentials not configured")
	}

	if alertType != "" {
		message = fmt.Sprintf("Hridamrit Alert - %s: %s", alertType, message)
	}
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.Config.TwilioPhoneNumber)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.Config.TwilioBaseURL, s.Config.TwilioAccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.Config.TwilioAccountSID, s.Config.TwilioAuthToken)

	start := time.Now()
	resp, err := s.httpClient().Do(req)
	if err != nil {
		health_fields.RecordUpstream("twilio", "messages", http.MethodPost, 0, err, time.Since(start))
		return "", apperr.Wrap(err, apperr.ErrUpstream, "failed to send sms")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	health_fields.RecordUpstream("twilio", "messages", http.MethodPost, resp.StatusCode, nil, time.Since(start))

	if resp.StatusCode/100 != 2 {
		s.Logger.WithFields(logrus.Fields{
			"status": resp.Status,
			"body":   string(body),
		}).Error("twilio rejected sms")
		return "", apperr.WithMessage(apperr.ErrUpstream, "failed to send sms")
	}

	var sent struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(body, &sent); err != nil {
		s.Logger.WithError(err).Warn("could not decode twilio response")
	}
	return sent.Sid, nil
}

// TestAlert fires a canned message at the caller's saved phone number so
// they can confirm the pipeline end to end.
func (s *Service) TestAlert(c *gin.Context) {
	settings, found, err := s.settingsFor(gateway.UserID(c))
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	if !found || settings.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no phone number configured", "code": "validation_error"})
		return
	}

	sid, err := s.sendSMS(c.Request.Context(), settings.PhoneNumber, "Test", testAlertBody)
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message_sid": sid, "to": settings.PhoneNumber})
}
