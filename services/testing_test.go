package services

import (
	"fmt"
	"testing"
	"time"

	"comptapilot-backend/models"
	"comptapilot-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Deadline{},
		&models.MessageTemplate{},
		&models.EmailLog{},
		&models.SMSLog{},
		&models.Note{},
	))
	return db
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeEmailSender struct {
	sent   []sentEmail
	failTo map[string]bool
}

func (f *fakeEmailSender) Send(to, subject, body string) error {
	if f.failTo[to] {
		return fmt.Errorf("smtp refused %s", to)
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

type sentSMS struct {
	To   string
	Body string
}

type fakeSMSSender struct {
	sent   []sentSMS
	failTo map[string]bool
}

func (f *fakeSMSSender) Send(to, body string) error {
	if f.failTo[to] {
		return fmt.Errorf("gateway refused %s", to)
	}
	f.sent = append(f.sent, sentSMS{To: to, Body: body})
	return nil
}

func newTestReminderService(t *testing.T, db *gorm.DB, now time.Time) (*ReminderService, *fakeEmailSender, *fakeSMSSender) {
	t.Helper()

	email := &fakeEmailSender{failTo: map[string]bool{}}
	sms := &fakeSMSSender{failTo: map[string]bool{}}
	svc := NewReminderServiceWithSenders(db, email, sms, "+212")
	svc.now = func() time.Time { return now }
	return svc, email, sms
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:   username,
		Email:      username + "@comptapilot.test",
		Password:   "secret-password",
		Name:       username,
		IsApproved: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createClient(t *testing.T, db *gorm.DB, userID uuid.UUID, name, email, phone string) models.Client {
	t.Helper()

	client := models.Client{
		UserID: userID,
		Name:   name,
		ICE:    "00123456789",
		Email:  email,
		Phone:  phone,
		Type:   "SARL",
	}
	require.NoError(t, db.Create(&client).Error)
	return client
}

func createDeadline(t *testing.T, db *gorm.DB, clientID uuid.UUID, dtype, period string, due time.Time, status string) models.Deadline {
	t.Helper()

	deadline := models.Deadline{
		ClientID: clientID,
		Type:     dtype,
		Period:   period,
		DueDate:  utils.BeginningOfDay(due),
		Status:   status,
	}
	require.NoError(t, db.Create(&deadline).Error)
	return deadline
}

func reloadDeadline(t *testing.T, db *gorm.DB, id uuid.UUID) models.Deadline {
	t.Helper()

	var deadline models.Deadline
	require.NoError(t, db.First(&deadline, "id = ?", id).Error)
	return deadline
}
