package fitness

import (
	"errors"

	"github.com/hridamrit/hridamrit/apperr"
	"github.com/hridamrit/hridamrit/health_fields"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertLink writes the link row for link.UserID, replacing every stored
// column with the caller's values. Last write wins; there is no merge and
// no guard against concurrent writers for the same user.
func (s *Service) UpsertLink(link health_fields.FitnessLink) error {
	// the conflict target is user_id, so a stale primary key must not
	// leak into the insert attempt
	link.ID = 0
	res := s.Db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "token_expiry",
			"height", "weight", "steps", "calories",
			"last_synced", "updated_at",
		}),
	}).Create(&link)
	if res.Error != nil {
		s.Logger.WithError(res.Error).Error("failed to upsert fitness link")
		return apperr.Wrap(res.Error, apperr.ErrDatabase, "could not save fitness link")
	}
	return nil
}

// GetLink fetches the link row for userID. A missing row is not an error:
// it returns found == false so callers can distinguish "never connected"
// from a storage failure.
func (s *Service) GetLink(userID uint) (health_fields.FitnessLink, bool, error) {
	var link health_fields.FitnessLink
	res := s.Db.Where("user_id = ?", userID).First(&link)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return link, false, nil
	}
	if res.Error != nil {
		s.Logger.WithError(res.Error).Error("failed to load fitness link")
		return link, false, apperr.Wrap(res.Error, apperr.ErrDatabase, "could not load fitness link")
	}
	return link, true, nil
}
