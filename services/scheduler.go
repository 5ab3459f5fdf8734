package services

import (
	"comptapilot-backend/config"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StartScheduler triggers the daily reminder cycle followed by the rollover
// pass, on the configured cron expression.
func StartScheduler(db *gorm.DB, cfg *config.Config) (*cron.Cron, error) {
	leadDays, err := cfg.ReminderDays()
	if err != nil {
		return nil, err
	}

	reminders := NewReminderService(db, cfg)
	rollover := NewRolloverService(db)

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReminderCron, func() {
		log.WithField("leadDays", leadDays).Info("starting scheduled reminder cycle")
		if err := reminders.RunCycle(leadDays, ""); err != nil {
			log.WithError(err).Error("reminder cycle failed")
		}
		if err := rollover.ProcessTodayDeadlines(); err != nil {
			log.WithError(err).Error("rollover failed")
		}
		log.Info("scheduled reminder cycle completed")
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.WithField("cron", cfg.ReminderCron).Info("reminder scheduler started")
	return c, nil
}
