package services

import (
	"fmt"
	"strings"

	"comptapilot-backend/models"
	"comptapilot-backend/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CustomReminderParams is one user-authored send: template text plus the
// deadline filters it applies to.
type CustomReminderParams struct {
	EmailMessage string
	SMSMessage   string
	EmailSubject string
	DeadlineType string     // empty matches all types
	ClientID     *uuid.UUID // nil matches all clients
	DaysBefore   int
}

type SendResult struct {
	DeadlineID  uuid.UUID `json:"deadlineId"`
	ClientName  string    `json:"clientName"`
	Channel     Channel   `json:"channel"`
	Destination string    `json:"destination"`
	Sent        bool      `json:"sent"`
	Error       string    `json:"error,omitempty"`
}

// SendCustom renders a user-authored template against every matching
// pending deadline and delivers it on whichever channels the template
// fills in. Failures are per recipient; the batch always completes.
func (s *ReminderService) SendCustom(userID uuid.UUID, params CustomReminderParams) ([]SendResult, error) {
	if strings.TrimSpace(params.EmailMessage) == "" && strings.TrimSpace(params.SMSMessage) == "" {
		return nil, fmt.Errorf("at least one message template (email or sms) is required")
	}

	query := s.db.Table("deadlines").
		Select(`deadlines.id AS deadline_id, clients.user_id AS user_id,
			clients.name AS client_name, clients.email AS client_email,
			clients.phone AS client_phone, clients.type AS client_type,
			clients.ice AS ice, clients.if_number AS if_number,
			deadlines.type AS deadline_type, deadlines.period,
			deadlines.due_date, deadlines.status`).
		Joins("JOIN clients ON clients.id = deadlines.client_id").
		Where("deadlines.status = ? AND clients.user_id = ?", models.StatusPending, userID).
		Where("deadlines.deleted_at IS NULL AND clients.deleted_at IS NULL")

	if params.DeadlineType != "" {
		query = query.Where("deadlines.type = ?", params.DeadlineType)
	}
	if params.ClientID != nil {
		query = query.Where("clients.id = ?", *params.ClientID)
	}
	if params.DaysBefore > 0 {
		target := utils.BeginningOfDay(s.now()).AddDate(0, 0, params.DaysBefore)
		query = query.Where("deadlines.due_date = ?", target)
	}

	var rows []ReminderRow
	if err := query.Order("deadlines.due_date ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to select matching deadlines: %w", err)
	}

	var results []SendResult
	for _, row := range rows {
		values := map[string]string{
			"client_name":   row.ClientName,
			"client_email":  row.ClientEmail,
			"client_phone":  utils.OrNA(row.ClientPhone),
			"client_type":   utils.OrNA(row.ClientType),
			"ice":           utils.OrNA(row.ICE),
			"if_number":     utils.OrNA(row.IFNumber),
			"deadline_type": row.DeadlineType,
			"period":        row.Period,
			"due_date":      row.DueDate.Format("2006-01-02"),
			"status":        row.Status,
		}

		if strings.TrimSpace(params.EmailMessage) != "" {
			results = append(results, s.sendCustomEmail(row, params, values))
		}
		if strings.TrimSpace(params.SMSMessage) != "" {
			results = append(results, s.sendCustomSMS(row, params, values))
		}
	}
	return results, nil
}

func (s *ReminderService) sendCustomEmail(row ReminderRow, params CustomReminderParams, values map[string]string) SendResult {
	result := SendResult{
		DeadlineID:  row.DeadlineID,
		ClientName:  row.ClientName,
		Channel:     ChannelEmail,
		Destination: row.ClientEmail,
	}

	if !utils.IsValidEmail(row.ClientEmail) {
		result.Error = fmt.Sprintf("invalid email %q", row.ClientEmail)
		log.WithField("client", row.ClientName).Warn(result.Error)
		return result
	}

	body, err := utils.RenderTemplate(params.EmailMessage, values)
	if err != nil {
		result.Error = err.Error()
		log.WithError(err).WithField("client", row.ClientName).Warn("email template error")
		return result
	}
	subject := params.EmailSubject
	if strings.TrimSpace(subject) == "" {
		subject = "Rappel d'échéance personnalisé"
	}
	if subject, err = utils.RenderTemplate(subject, values); err != nil {
		result.Error = err.Error()
		log.WithError(err).WithField("client", row.ClientName).Warn("subject template error")
		return result
	}

	if err := s.email.Send(row.ClientEmail, subject, body); err != nil {
		result.Error = err.Error()
		log.WithError(err).WithField("to", row.ClientEmail).Error("failed to send custom email")
		return result
	}

	s.markEmailSent(Bundle{Destination: row.ClientEmail, Rows: []ReminderRow{row}})
	result.Sent = true
	return result
}

func (s *ReminderService) sendCustomSMS(row ReminderRow, params CustomReminderParams, values map[string]string) SendResult {
	result := SendResult{
		DeadlineID: row.DeadlineID,
		ClientName: row.ClientName,
		Channel:    ChannelSMS,
	}

	phone, err := utils.NormalizePhone(row.ClientPhone, s.countryCode)
	if err != nil {
		result.Destination = row.ClientPhone
		result.Error = err.Error()
		log.WithField("client", row.ClientName).Warn(result.Error)
		return result
	}
	result.Destination = phone

	body, err := utils.RenderTemplate(params.SMSMessage, values)
	if err != nil {
		result.Error = err.Error()
		log.WithError(err).WithField("client", row.ClientName).Warn("sms template error")
		return result
	}

	if err := s.sms.Send(phone, body); err != nil {
		result.Error = err.Error()
		log.WithError(err).WithField("to", phone).Error("failed to send custom sms")
		return result
	}

	s.markSMSSent(Bundle{Destination: phone, Rows: []ReminderRow{row}}, body)
	result.Sent = true
	return result
}
