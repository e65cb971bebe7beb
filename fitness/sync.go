package fitness

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/gateway"
	"github.com/hridamrit/hridamrit/health_fields"
	"github.com/sirupsen/logrus"
)

// Connect returns the provider consent URL for the caller to redirect to.
// It fails fast when the OAuth app is not configured rather than sending
// the user to a consent screen that will reject the client.
func (s *Service) Connect(c *gin.Context) {
	if s.Config.GoogleClientID == "" {
		err := apperr.WithMessage(apperr.ErrConfiguration, "google fit credentials not configured")
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}

	q := url.Values{}
	q.Set("client_id", s.Config.GoogleClientID)
	q.Set("redirect_uri", s.Config.GoogleRedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", oauthScopes)
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")

	c.JSON(http.StatusOK, gin.H{"auth_url": s.Config.GoogleAuthURL + "?" + q.Encode()})
}

// Callback completes the OAuth round trip. A request without a code (the
// user cancelled the consent screen) is a silent no-op; no row is written
// and no error surfaces. With a code it exchanges, stores the tokens and
// runs a first sync before redirecting back to the app.
func (s *Service) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Status(http.StatusNoContent)
		return
	}
	userID := gateway.UserID(c)

	token, err := s.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}

	// Read before write so a relink keeps previously synced samples until
	// the sync below overwrites them.
	link, _, err := s.GetLink(userID)
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	link.UserID = userID
	link.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		link.RefreshToken = token.RefreshToken
	}
	expiry := s.clock().Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	link.TokenExpiry = &expiry

	if err := s.UpsertLink(link); err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}

	// First sync is best effort; a provider hiccup here must not strand
	// the user on an error page after a successful link. The failure is
	// still surfaced so the app can show it next to the fresh link.
	target := s.Config.AppURL
	if err := s.syncUser(c.Request.Context(), userID); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("initial fitness sync failed after link")
		target = appendQuery(target, "sync_error", apperr.Code(err))
	}

	c.Redirect(http.StatusFound, target)
}

// Sync re-aggregates the caller's samples on demand.
func (s *Service) Sync(c *gin.Context) {
	userID := gateway.UserID(c)
	if err := s.syncUser(c.Request.Context(), userID); err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	link, _, err := s.GetLink(userID)
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	c.JSON(http.StatusOK, linkStatus(link, true))
}

// Status reports whether the caller is linked and, if so, the stored
// summary values. It never touches the provider.
func (s *Service) Status(c *gin.Context) {
	link, found, err := s.GetLink(gateway.UserID(c))
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	c.JSON(http.StatusOK, linkStatus(link, found))
}

// syncUser fetches fresh samples and replaces the stored summary wholesale.
// Any fetch failure aborts before the write, leaving the previous summary
// intact.
func (s *Service) syncUser(ctx context.Context, userID uint) error {
	link, found, err := s.GetLink(userID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.WithMessage(apperr.ErrValidation, "google fit is not connected")
	}

	samples, err := s.FetchSamples(ctx, link.AccessToken)
	if err != nil {
		return err
	}

	link.Height = samples.Height
	link.Weight = samples.Weight
	link.Steps = &samples.Steps
	link.Calories = &samples.Calories
	now := s.clock().Now()
	link.LastSynced = &now

	return s.UpsertLink(link)
}

func appendQuery(target, key, value string) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + key + "=" + url.QueryEscape(value)
}

func linkStatus(link health_fields.FitnessLink, found bool) gin.H {
	if !found {
		return gin.H{"connected": false}
	}
	return gin.H{
		"connected":   true,
		"height":      link.Height,
		"weight":      link.Weight,
		"steps":       link.Steps,
		"calories":    link.Calories,
		"last_synced": link.LastSynced,
	}
}
