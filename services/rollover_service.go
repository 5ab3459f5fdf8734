package services

import (
	"fmt"
	"strings"
	"time"

	"comptapilot-backend/models"
	"comptapilot-backend/utils"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RolloverService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRolloverService(db *gorm.DB) *RolloverService {
	return &RolloverService{db: db, now: time.Now}
}

// ProcessTodayDeadlines advances every deadline due today to its next
// occurrence, or deletes it when it has none. Status and send flags are
// left alone; the dispatcher resets flags at the next cycle start.
func (s *RolloverService) ProcessTodayDeadlines() error {
	today := utils.BeginningOfDay(s.now())

	var deadlines []models.Deadline
	if err := s.db.Where("due_date = ?", today).Find(&deadlines).Error; err != nil {
		return fmt.Errorf("failed to load today's deadlines: %w", err)
	}

	for _, deadline := range deadlines {
		var next time.Time
		switch strings.ToLower(deadline.Period) {
		case strings.ToLower(models.PeriodMonthly):
			next = utils.AddMonthsClamped(deadline.DueDate, 1)
		case strings.ToLower(models.PeriodQuarterly):
			next = utils.AddMonthsClamped(deadline.DueDate, 3)
		case strings.ToLower(models.PeriodAnnual):
			next = utils.AddYearsClamped(deadline.DueDate, 1)
		case strings.ToLower(models.PeriodOneTime):
			s.deleteExpired(deadline, "one-time deadline passed")
			continue
		default:
			// Unrecognized periods are terminal, same as one-time.
			s.deleteExpired(deadline, "unrecognized period "+deadline.Period)
			continue
		}

		if err := s.db.Model(&models.Deadline{}).
			Where("id = ?", deadline.ID).
			Update("due_date", next).Error; err != nil {
			log.WithError(err).WithField("deadline", deadline.ID).Error("failed to advance due date")
			continue
		}
		log.WithFields(log.Fields{
			"deadline": deadline.ID,
			"period":   deadline.Period,
			"from":     deadline.DueDate.Format("2006-01-02"),
			"to":       next.Format("2006-01-02"),
		}).Info("deadline rolled over")
	}
	return nil
}

func (s *RolloverService) deleteExpired(deadline models.Deadline, reason string) {
	if err := s.db.Unscoped().Delete(&models.Deadline{}, "id = ?", deadline.ID).Error; err != nil {
		log.WithError(err).WithField("deadline", deadline.ID).Error("failed to delete expired deadline")
		return
	}
	log.WithFields(log.Fields{
		"deadline": deadline.ID,
		"type":     deadline.Type,
		"reason":   reason,
	}).Warn("deadline deleted")
}
