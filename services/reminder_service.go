// services/reminder_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"comptapilot-backend/config"
	"comptapilot-backend/models"
	"comptapilot-backend/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ReminderRow is one pending deadline joined with its client, as selected
// for a reminder cycle.
type ReminderRow struct {
	DeadlineID   uuid.UUID
	UserID       uuid.UUID
	ClientName   string
	ClientEmail  string
	ClientPhone  string
	ClientType   string
	ICE          string
	IFNumber     string
	DeadlineType string
	Period       string
	DueDate      time.Time
	Status       string
}

// Bundle groups every deadline sharing one destination; a recipient with
// several deadlines due the same day gets a single message.
type Bundle struct {
	Destination string
	Rows        []ReminderRow
}

type ReminderService struct {
	db          *gorm.DB
	email       EmailSender
	sms         SMSSender
	countryCode string
	now         func() time.Time
}

func NewReminderService(db *gorm.DB, cfg *config.Config) *ReminderService {
	return &ReminderService{
		db:          db,
		email:       NewSMTPSender(cfg),
		sms:         NewTwilioSender(cfg),
		countryCode: cfg.CountryCode,
		now:         time.Now,
	}
}

// NewReminderServiceWithSenders wires custom delivery backends.
func NewReminderServiceWithSenders(db *gorm.DB, email EmailSender, sms SMSSender, countryCode string) *ReminderService {
	return &ReminderService{
		db:          db,
		email:       email,
		sms:         sms,
		countryCode: countryCode,
		now:         time.Now,
	}
}

// RunCycle drives one full reminder run over every configured lead time,
// optionally scoped to a single user's clients. One recipient's failure
// never aborts the batch.
func (s *ReminderService) RunCycle(leadDays []int, username string) error {
	var userID *uuid.UUID
	if username != "" {
		var user models.User
		if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
			return fmt.Errorf("unknown user %q: %w", username, err)
		}
		userID = &user.ID
	}

	if err := s.resetSentFlags(); err != nil {
		return err
	}

	for _, days := range leadDays {
		s.remindByEmail(days, userID)
		s.remindBySMS(days, userID)
	}
	return nil
}

// A new run is a new cycle: send flags from the previous cycle are cleared
// for both channels before any selection happens.
func (s *ReminderService) resetSentFlags() error {
	if err := s.db.Model(&models.Deadline{}).
		Where("email_sent = ?", true).
		Update("email_sent", false).Error; err != nil {
		return fmt.Errorf("failed to reset email flags: %w", err)
	}
	if err := s.db.Model(&models.Deadline{}).
		Where("sms_sent = ?", true).
		Update("sms_sent", false).Error; err != nil {
		return fmt.Errorf("failed to reset sms flags: %w", err)
	}
	return nil
}

// selectDue finds pending deadlines due exactly today+leadDays whose flag
// for the requested channel is still unset, ordered by due date.
func (s *ReminderService) selectDue(leadDays int, userID *uuid.UUID, channel Channel) ([]ReminderRow, error) {
	target := utils.BeginningOfDay(s.now()).AddDate(0, 0, leadDays)

	query := s.db.Table("deadlines").
		Select(`deadlines.id AS deadline_id, clients.user_id AS user_id,
			clients.name AS client_name, clients.email AS client_email,
			clients.phone AS client_phone, clients.type AS client_type,
			clients.ice AS ice, clients.if_number AS if_number,
			deadlines.type AS deadline_type, deadlines.period,
			deadlines.due_date, deadlines.status`).
		Joins("JOIN clients ON clients.id = deadlines.client_id").
		Where("deadlines.status = ? AND deadlines.due_date = ?", models.StatusPending, target).
		Where("deadlines.deleted_at IS NULL AND clients.deleted_at IS NULL")

	switch channel {
	case ChannelEmail:
		query = query.Where("deadlines.email_sent = ?", false)
	case ChannelSMS:
		query = query.Where("deadlines.sms_sent = ?", false)
	}
	if userID != nil {
		query = query.Where("clients.user_id = ?", *userID)
	}

	var rows []ReminderRow
	if err := query.Order("deadlines.due_date ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to select deadlines due in %d day(s): %w", leadDays, err)
	}
	return rows, nil
}

func (s *ReminderService) bundleByEmail(rows []ReminderRow) []Bundle {
	var order []string
	byDest := make(map[string]*Bundle)

	for _, row := range rows {
		if !utils.IsValidEmail(row.ClientEmail) {
			log.WithFields(log.Fields{
				"client": row.ClientName,
				"email":  row.ClientEmail,
			}).Warn("skipping invalid email")
			continue
		}
		b, ok := byDest[row.ClientEmail]
		if !ok {
			b = &Bundle{Destination: row.ClientEmail}
			byDest[row.ClientEmail] = b
			order = append(order, row.ClientEmail)
		}
		b.Rows = append(b.Rows, row)
	}

	bundles := make([]Bundle, 0, len(order))
	for _, dest := range order {
		bundles = append(bundles, *byDest[dest])
	}
	return bundles
}

func (s *ReminderService) bundleByPhone(rows []ReminderRow) []Bundle {
	var order []string
	byDest := make(map[string]*Bundle)

	for _, row := range rows {
		phone, err := utils.NormalizePhone(row.ClientPhone, s.countryCode)
		if err != nil {
			log.WithFields(log.Fields{
				"client": row.ClientName,
				"phone":  row.ClientPhone,
			}).Warn("skipping invalid phone")
			continue
		}
		b, ok := byDest[phone]
		if !ok {
			b = &Bundle{Destination: phone}
			byDest[phone] = b
			order = append(order, phone)
		}
		b.Rows = append(b.Rows, row)
	}

	bundles := make([]Bundle, 0, len(order))
	for _, dest := range order {
		bundles = append(bundles, *byDest[dest])
	}
	return bundles
}

func (s *ReminderService) remindByEmail(leadDays int, userID *uuid.UUID) {
	rows, err := s.selectDue(leadDays, userID, ChannelEmail)
	if err != nil {
		log.WithError(err).Error("email reminder selection failed")
		return
	}
	if len(rows) == 0 {
		log.WithField("leadDays", leadDays).Info("no deadlines to remind by email")
		return
	}

	for _, bundle := range s.bundleByEmail(rows) {
		lines := make([]string, 0, len(bundle.Rows))
		for _, row := range bundle.Rows {
			lines = append(lines, fmt.Sprintf("%s - %s - %s - Due %s (%d days left)",
				row.ClientName, row.DeadlineType, row.Period,
				row.DueDate.Format("2006-01-02"), leadDays))
		}

		subject := fmt.Sprintf("Rappel : %d échéance(s) dans %d jour(s)", len(bundle.Rows), leadDays)
		body := fmt.Sprintf(
			"Bonjour,\n\nIl reste %d jour(s) avant l'échéance suivante :\n\n%s\n\nMerci de prendre les mesures nécessaires.",
			leadDays, strings.Join(lines, "\n"))

		if err := s.email.Send(bundle.Destination, subject, body); err != nil {
			log.WithError(err).WithField("to", bundle.Destination).Error("failed to send reminder email")
			continue
		}
		s.markEmailSent(bundle)
		log.WithFields(log.Fields{
			"to":        bundle.Destination,
			"deadlines": len(bundle.Rows),
		}).Info("reminder email sent")
	}
}

func (s *ReminderService) remindBySMS(leadDays int, userID *uuid.UUID) {
	rows, err := s.selectDue(leadDays, userID, ChannelSMS)
	if err != nil {
		log.WithError(err).Error("sms reminder selection failed")
		return
	}
	if len(rows) == 0 {
		log.WithField("leadDays", leadDays).Info("no deadlines to remind by sms")
		return
	}

	for _, bundle := range s.bundleByPhone(rows) {
		lines := make([]string, 0, len(bundle.Rows))
		for _, row := range bundle.Rows {
			lines = append(lines, fmt.Sprintf("%s (%s) - échéance le %s",
				row.DeadlineType, row.Period, row.DueDate.Format("2006-01-02")))
		}

		body := fmt.Sprintf(
			"Bonjour,\nIl reste %d jour(s) avant:\n%s\n\nMerci de prendre les mesures nécessaires.",
			leadDays, strings.Join(lines, "\n"))

		if err := s.sms.Send(bundle.Destination, body); err != nil {
			log.WithError(err).WithField("to", bundle.Destination).Error("failed to send reminder sms")
			continue
		}
		s.markSMSSent(bundle, body)
		log.WithFields(log.Fields{
			"to":        bundle.Destination,
			"deadlines": len(bundle.Rows),
		}).Info("reminder sms sent")
	}
}

// markEmailSent writes the audit rows and flips the flag for every deadline
// bundled into an already-delivered message. Each write is its own short
// transaction; a crash in between risks a duplicate reminder next run,
// never a missed one.
func (s *ReminderService) markEmailSent(bundle Bundle) {
	for _, row := range bundle.Rows {
		if err := s.db.Create(&models.EmailLog{UserID: row.UserID, DeadlineID: row.DeadlineID}).Error; err != nil {
			log.WithError(err).WithField("deadline", row.DeadlineID).Error("failed to write email log")
		}
		if err := s.db.Model(&models.Deadline{}).
			Where("id = ?", row.DeadlineID).
			Update("email_sent", true).Error; err != nil {
			log.WithError(err).WithField("deadline", row.DeadlineID).Error("failed to mark email sent")
		}
	}
}

func (s *ReminderService) markSMSSent(bundle Bundle, message string) {
	for _, row := range bundle.Rows {
		smsLog := models.SMSLog{
			UserID:     row.UserID,
			DeadlineID: row.DeadlineID,
			Phone:      bundle.Destination,
			Message:    message,
		}
		if err := s.db.Create(&smsLog).Error; err != nil {
			log.WithError(err).WithField("deadline", row.DeadlineID).Error("failed to write sms log")
		}
		if err := s.db.Model(&models.Deadline{}).
			Where("id = ?", row.DeadlineID).
			Update("sms_sent", true).Error; err != nil {
			log.WithError(err).WithField("deadline", row.DeadlineID).Error("failed to mark sms sent")
		}
	}
}

const (
	defaultIndividualSubject = "Reminder: {deadline_type} deadline"
	defaultIndividualBody    = "Bonjour {client_name},\n\n" +
		"Ceci est un rappel pour la tâche suivante :\n" +
		"- Type: {deadline_type}\n" +
		"- Période: {period}\n" +
		"- Date limite: {due_date}\n\n" +
		"Merci de prendre les mesures nécessaires."
)

// SendIndividualEmail sends one on-demand reminder for a single deadline,
// independent of the batch cycle. The best-matching user template is used,
// falling back to the built-in default message.
func (s *ReminderService) SendIndividualEmail(deadlineID uuid.UUID) error {
	var deadline models.Deadline
	if err := s.db.First(&deadline, "id = ?", deadlineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("deadline %s not found", deadlineID)
		}
		return err
	}

	var client models.Client
	if err := s.db.First(&client, "id = ?", deadline.ClientID).Error; err != nil {
		return fmt.Errorf("client for deadline %s not found: %w", deadlineID, err)
	}
	if !utils.IsValidEmail(client.Email) {
		return fmt.Errorf("client %s has no valid email (%q)", client.Name, client.Email)
	}

	subject := defaultIndividualSubject
	body := defaultIndividualBody
	if tpl := s.resolveTemplate(client.UserID, deadline.Type, client.ID); tpl != nil {
		if tpl.EmailMessage != nil && strings.TrimSpace(*tpl.EmailMessage) != "" {
			body = *tpl.EmailMessage
		}
		if tpl.EmailSubject != nil && strings.TrimSpace(*tpl.EmailSubject) != "" {
			subject = *tpl.EmailSubject
		}
	}

	values := templateValues(client, deadline)
	renderedSubject, err := utils.RenderTemplate(subject, values)
	if err != nil {
		return fmt.Errorf("failed to render subject: %w", err)
	}
	renderedBody, err := utils.RenderTemplate(body, values)
	if err != nil {
		return fmt.Errorf("failed to render message: %w", err)
	}

	if err := s.email.Send(client.Email, renderedSubject, renderedBody); err != nil {
		return err
	}

	if err := s.db.Create(&models.EmailLog{UserID: client.UserID, DeadlineID: deadline.ID}).Error; err != nil {
		log.WithError(err).WithField("deadline", deadline.ID).Error("failed to write email log")
	}
	if err := s.db.Model(&models.Deadline{}).
		Where("id = ?", deadline.ID).
		Update("email_sent", true).Error; err != nil {
		log.WithError(err).WithField("deadline", deadline.ID).Error("failed to mark email sent")
	}
	return nil
}

// resolveTemplate picks the user's best-matching template: a concrete
// deadline-type or client match beats none only by recency — the newest
// matching template wins, id breaks created_at ties.
func (s *ReminderService) resolveTemplate(userID uuid.UUID, deadlineType string, clientID uuid.UUID) *models.MessageTemplate {
	var tpl models.MessageTemplate
	err := s.db.Where("user_id = ?", userID).
		Where("deadline_type IS NULL OR deadline_type = ?", deadlineType).
		Where("client_id IS NULL OR client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		First(&tpl).Error
	if err != nil {
		return nil
	}
	return &tpl
}

func templateValues(client models.Client, deadline models.Deadline) map[string]string {
	return map[string]string{
		"client_name":   client.Name,
		"client_email":  client.Email,
		"client_phone":  utils.OrNA(client.Phone),
		"client_type":   utils.OrNA(client.Type),
		"ice":           utils.OrNA(client.ICE),
		"if_number":     utils.OrNA(client.IFNumber),
		"deadline_type": deadline.Type,
		"period":        deadline.Period,
		"due_date":      deadline.DueDate.Format("2006-01-02"),
		"status":        deadline.Status,
	}
}
