// Package fitness implements the Google Fit linking and sync flow: the
// authorization-code exchange, the sample aggregation over the trailing
// 7-day window, the per-user link store and the handlers sequencing them.
package fitness

import (
	"net/http"
	"time"

	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Scopes requested from the consent screen. Read-only; offline access and
// forced re-consent are added by the authorize URL itself.
const oauthScopes = "https://www.googleapis.com/auth/fitness.activity.read https://www.googleapis.com/auth/fitness.body.read"

// Samples are aggregated over the trailing 7 days ending at the request.
const sampleWindow = 7 * 24 * time.Hour

type Service struct {
	Db     *gorm.DB
	Config health_fields.Config
	Logger *logrus.Logger
	Clock  health_fields.Clock
	Client *http.Client
}

func (s *Service) clock() health_fields.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return health_fields.SystemClock
}

func (s *Service) httpClient() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}
