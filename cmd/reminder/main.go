// Batch entry point for the reminder cycle: runs one full dispatcher pass
// over the given lead times, then the daily rollover, and exits. Meant to
// be invoked by an external periodic trigger.
package main

import (
	"flag"
	"strconv"
	"strings"

	"comptapilot-backend/config"
	"comptapilot-backend/services"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	daysFlag := flag.String("days", "", "comma-separated lead times in days (default: REMINDER_DAYS)")
	userFlag := flag.String("user", "", "restrict the cycle to one user's clients (username)")
	skipRollover := flag.Bool("skip-rollover", false, "run the reminder cycle only")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	leadDays, err := parseLeadDays(*daysFlag, cfg)
	if err != nil {
		log.WithError(err).Fatal("invalid lead times")
	}

	if err := config.ConnectDB(cfg); err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	reminders := services.NewReminderService(config.DB, cfg)
	log.WithFields(log.Fields{"days": leadDays, "user": *userFlag}).Info("starting reminder cycle")
	if err := reminders.RunCycle(leadDays, *userFlag); err != nil {
		log.WithError(err).Fatal("reminder cycle failed")
	}

	if !*skipRollover {
		rollover := services.NewRolloverService(config.DB)
		if err := rollover.ProcessTodayDeadlines(); err != nil {
			log.WithError(err).Fatal("rollover failed")
		}
	}

	log.Info("reminder cycle completed")
}

func parseLeadDays(raw string, cfg *config.Config) ([]int, error) {
	if raw == "" {
		return cfg.ReminderDays()
	}
	var days []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, flagError(part)
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		return cfg.ReminderDays()
	}
	return days, nil
}

type flagError string

func (e flagError) Error() string {
	return "lead times must be non-negative integers, got " + strconv.Quote(string(e))
}
