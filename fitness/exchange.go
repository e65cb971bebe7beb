package fitness

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/sirupsen/logrus"
)

// TokenResponse is the provider's answer to a code exchange.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// Exchange trades an authorization code for an access/refresh token pair.
// It performs a single attempt and persists nothing; storing the tokens is
// the caller's job.
func (s *Service) Exchange(ctx context.Context, code string) (TokenResponse, error) {
	var token TokenResponse

	if code == "" {
		return token, apperr.WithMessage(apperr.ErrValidation, "authorization code is required")
	}
	if s.Config.GoogleClientID == "" || s.Config.GoogleClientSecret == "" {
		return token, apperr.WithMessage(apperr.ErrConfiguration, "google fit credentials not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", s.Config.GoogleClientID)
	form.Set("client_secret", s.Config.GoogleClientSecret)
	form.Set("redirect_uri", s.Config.GoogleRedirectURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Config.GoogleTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return token, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.httpClient().Do(httpReq)
	if err != nil {
		health_fields.RecordUpstream("google_fit", "token_exchange", http.MethodPost, 0, err, time.Since(start))
		return token, apperr.Wrap(err, apperr.ErrUpstream, "failed to exchange authorization code")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	health_fields.RecordUpstream("google_fit", "token_exchange", http.MethodPost, resp.StatusCode, nil, time.Since(start))

	if resp.StatusCode/100 != 2 {
		// the provider's error body is for the logs, not the caller
		s.Logger.WithFields(logrus.Fields{
			"status": resp.Status,
			"body":   string(body),
		}).Error("google token exchange failed")
		return token, apperr.WithMessage(apperr.ErrUpstream, "failed to exchange authorization code")
	}

	if err := json.Unmarshal(body, &token); err != nil {
		return token, apperr.Wrap(err, apperr.ErrUpstream, "could not decode token response")
	}
	if token.AccessToken == "" {
		return token, apperr.Wrap(errors.New("missing access_token from google"), apperr.ErrUpstream, "")
	}
	return token, nil
}
