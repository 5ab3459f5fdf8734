package services

import (
	"testing"
	"time"

	"comptapilot-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)

func TestSelectorMatchesOnlyTargetDate(t *testing.T) {
	db := newTestDB(t)
	svc, _, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "acme@client.test", "0612345678")

	due := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow.AddDate(0, 0, 5), models.StatusPending)
	createDeadline(t, db, client.ID, "CNSS", models.PeriodMonthly, testNow.AddDate(0, 0, 6), models.StatusPending)
	createDeadline(t, db, client.ID, "IR", models.PeriodMonthly, testNow.AddDate(0, 0, 5), models.StatusDone)

	rows, err := svc.selectDue(5, nil, ChannelEmail)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, due.ID, rows[0].DeadlineID)
	assert.Equal(t, "TVA", rows[0].DeadlineType)
}

func TestSelectorScopesToUser(t *testing.T) {
	db := newTestDB(t)
	svc, _, _ := newTestReminderService(t, db, testNow)

	userA := createUser(t, db, "fatima")
	userB := createUser(t, db, "youssef")
	clientA := createClient(t, db, userA.ID, "Acme", "acme@client.test", "")
	clientB := createClient(t, db, userB.ID, "Globex", "globex@client.test", "")

	mine := createDeadline(t, db, clientA.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)
	createDeadline(t, db, clientB.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)

	rows, err := svc.selectDue(0, &userA.ID, ChannelEmail)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].DeadlineID)

	rows, err = svc.selectDue(0, nil, ChannelEmail)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestEmptySelectionIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc, email, sms := newTestReminderService(t, db, testNow)

	require.NoError(t, svc.RunCycle([]int{1, 5}, ""))
	assert.Empty(t, email.sent)
	assert.Empty(t, sms.sent)
}

func TestBundlingSendsOneMessagePerRecipient(t *testing.T) {
	db := newTestDB(t)
	svc, email, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "acme@client.test", "")

	d1 := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)
	d2 := createDeadline(t, db, client.ID, "CNSS", models.PeriodQuarterly, testNow, models.StatusPending)

	require.NoError(t, svc.RunCycle([]int{0}, ""))

	require.Len(t, email.sent, 1)
	assert.Equal(t, "acme@client.test", email.sent[0].To)
	assert.Contains(t, email.sent[0].Body, "TVA")
	assert.Contains(t, email.sent[0].Body, "CNSS")
	assert.Contains(t, email.sent[0].Subject, "2 échéance(s)")

	assert.True(t, reloadDeadline(t, db, d1.ID).EmailSent)
	assert.True(t, reloadDeadline(t, db, d2.ID).EmailSent)

	var logCount int64
	db.Model(&models.EmailLog{}).Count(&logCount)
	assert.EqualValues(t, 2, logCount)
}

func TestCycleStepIsIdempotentWithoutReset(t *testing.T) {
	db := newTestDB(t)
	svc, email, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "acme@client.test", "")
	createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)

	svc.remindByEmail(0, nil)
	require.Len(t, email.sent, 1)

	// Same step again, no flag reset in between: nothing new goes out.
	svc.remindByEmail(0, nil)
	assert.Len(t, email.sent, 1)
}

func TestRunCycleResetsBothFlags(t *testing.T) {
	db := newTestDB(t)
	svc, _, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "acme@client.test", "")

	// Flags set by a previous cycle, deadline not due in this one.
	stale := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow.AddDate(0, 0, 14), models.StatusPending)
	require.NoError(t, db.Model(&models.Deadline{}).Where("id = ?", stale.ID).
		Updates(map[string]interface{}{"email_sent": true, "sms_sent": true}).Error)

	require.NoError(t, svc.RunCycle([]int{0}, ""))

	reloaded := reloadDeadline(t, db, stale.ID)
	assert.False(t, reloaded.EmailSent)
	assert.False(t, reloaded.SMSSent)
}

func TestOneRecipientFailureDoesNotAbortBatch(t *testing.T) {
	db := newTestDB(t)
	svc, email, _ := newTestReminderService(t, db, testNow)
	email.failTo["down@client.test"] = true

	user := createUser(t, db, "fatima")
	broken := createClient(t, db, user.ID, "Down SARL", "down@client.test", "")
	healthy := createClient(t, db, user.ID, "Acme", "acme@client.test", "")

	failed := createDeadline(t, db, broken.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)
	delivered := createDeadline(t, db, healthy.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)

	require.NoError(t, svc.RunCycle([]int{0}, ""))

	require.Len(t, email.sent, 1)
	assert.Equal(t, "acme@client.test", email.sent[0].To)
	assert.False(t, reloadDeadline(t, db, failed.ID).EmailSent)
	assert.True(t, reloadDeadline(t, db, delivered.ID).EmailSent)
}

func TestInvalidDestinationsAreSkipped(t *testing.T) {
	db := newTestDB(t)
	svc, email, sms := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	// No "0" or "+" prefix and a malformed email: neither channel can deliver.
	client := createClient(t, db, user.ID, "Acme", "not-an-email", "612345678")
	deadline := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)

	require.NoError(t, svc.RunCycle([]int{0}, ""))

	assert.Empty(t, email.sent)
	assert.Empty(t, sms.sent)
	reloaded := reloadDeadline(t, db, deadline.ID)
	assert.False(t, reloaded.EmailSent)
	assert.False(t, reloaded.SMSSent)
}

func TestPhoneNormalizedBeforeSending(t *testing.T) {
	db := newTestDB(t)
	svc, _, sms := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "", "0612345678")
	deadline := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)

	require.NoError(t, svc.RunCycle([]int{0}, ""))

	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+212612345678", sms.sent[0].To)
	assert.True(t, reloadDeadline(t, db, deadline.ID).SMSSent)

	var smsLog models.SMSLog
	require.NoError(t, db.First(&smsLog).Error)
	assert.Equal(t, "+212612345678", smsLog.Phone)
	assert.Equal(t, deadline.ID, smsLog.DeadlineID)
}

func TestEndToEndCycleAndRollover(t *testing.T) {
	db := newTestDB(t)
	svc, email, sms := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "acme@client.test", "0612345678")
	deadline := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)

	require.NoError(t, svc.RunCycle([]int{0}, ""))

	require.Len(t, email.sent, 1)
	require.Len(t, sms.sent, 1)
	reloaded := reloadDeadline(t, db, deadline.ID)
	assert.True(t, reloaded.EmailSent)
	assert.True(t, reloaded.SMSSent)

	rollover := NewRolloverService(db)
	rollover.now = svc.now
	require.NoError(t, rollover.ProcessTodayDeadlines())

	reloaded = reloadDeadline(t, db, deadline.ID)
	assert.Equal(t, "2025-08-01", reloaded.DueDate.Format("2006-01-02"))
	assert.Equal(t, models.StatusPending, reloaded.Status)
	// Rollover leaves flags alone; the next cycle start resets them.
	assert.True(t, reloaded.EmailSent)
	assert.True(t, reloaded.SMSSent)
}

func TestRunCycleRejectsUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc, _, _ := newTestReminderService(t, db, testNow)

	err := svc.RunCycle([]int{1}, "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestIndividualSendPrefersNewestMatchingTemplate(t *testing.T) {
	db := newTestDB(t)
	svc, email, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "acme@client.test", "")
	deadline := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow.AddDate(0, 0, 3), models.StatusPending)

	oldBody := "ancien modèle pour {client_name}"
	newBody := "Bonjour {client_name}, échéance {deadline_type} le {due_date}"
	subject := "Rappel {deadline_type}"

	wildcard := models.MessageTemplate{UserID: user.ID, EmailMessage: &oldBody}
	require.NoError(t, db.Create(&wildcard).Error)
	require.NoError(t, db.Model(&wildcard).Update("created_at", testNow.Add(-48*time.Hour)).Error)

	tvaOnly := "TVA"
	typed := models.MessageTemplate{UserID: user.ID, EmailMessage: &newBody, EmailSubject: &subject, DeadlineType: &tvaOnly}
	require.NoError(t, db.Create(&typed).Error)
	require.NoError(t, db.Model(&typed).Update("created_at", testNow.Add(-1*time.Hour)).Error)

	require.NoError(t, svc.SendIndividualEmail(deadline.ID))

	require.Len(t, email.sent, 1)
	assert.Equal(t, "Rappel TVA", email.sent[0].Subject)
	assert.Equal(t, "Bonjour Acme, échéance TVA le 2025-07-04", email.sent[0].Body)
	assert.True(t, reloadDeadline(t, db, deadline.ID).EmailSent)
}

func TestIndividualSendFallsBackToDefaultTemplate(t *testing.T) {
	db := newTestDB(t)
	svc, email, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "acme@client.test", "")
	deadline := createDeadline(t, db, client.ID, "IS", models.PeriodAnnual, testNow.AddDate(0, 0, 10), models.StatusPending)

	require.NoError(t, svc.SendIndividualEmail(deadline.ID))

	require.Len(t, email.sent, 1)
	assert.Equal(t, "Reminder: IS deadline", email.sent[0].Subject)
	assert.Contains(t, email.sent[0].Body, "Bonjour Acme")
	assert.Contains(t, email.sent[0].Body, "- Type: IS")
}

func TestIndividualSendRejectsInvalidEmail(t *testing.T) {
	db := newTestDB(t)
	svc, email, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "broken", "")
	deadline := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow, models.StatusPending)

	require.Error(t, svc.SendIndividualEmail(deadline.ID))
	assert.Empty(t, email.sent)
	assert.False(t, reloadDeadline(t, db, deadline.ID).EmailSent)
}

func TestSendCustomTemplateErrorSkipsOnlyThatChannel(t *testing.T) {
	db := newTestDB(t)
	svc, email, sms := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	client := createClient(t, db, user.ID, "Acme", "acme@client.test", "0612345678")
	deadline := createDeadline(t, db, client.ID, "TVA", models.PeriodMonthly, testNow.AddDate(0, 0, 2), models.StatusPending)

	results, err := svc.SendCustom(user.ID, CustomReminderParams{
		EmailMessage: "Bonjour {unknown_field}",
		SMSMessage:   "Bonjour {client_name}, échéance {deadline_type} le {due_date}. Merci.",
		DaysBefore:   2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Empty(t, email.sent)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "Bonjour Acme, échéance TVA le 2025-07-03. Merci.", sms.sent[0].Body)

	byChannel := map[Channel]SendResult{}
	for _, r := range results {
		byChannel[r.Channel] = r
	}
	assert.False(t, byChannel[ChannelEmail].Sent)
	assert.Contains(t, byChannel[ChannelEmail].Error, "unknown_field")
	assert.True(t, byChannel[ChannelSMS].Sent)

	reloaded := reloadDeadline(t, db, deadline.ID)
	assert.False(t, reloaded.EmailSent)
	assert.True(t, reloaded.SMSSent)
}

func TestSendCustomFiltersByTypeAndClient(t *testing.T) {
	db := newTestDB(t)
	svc, email, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	acme := createClient(t, db, user.ID, "Acme", "acme@client.test", "")
	globex := createClient(t, db, user.ID, "Globex", "globex@client.test", "")

	createDeadline(t, db, acme.ID, "TVA", models.PeriodMonthly, testNow.AddDate(0, 0, 1), models.StatusPending)
	createDeadline(t, db, acme.ID, "CNSS", models.PeriodMonthly, testNow.AddDate(0, 0, 1), models.StatusPending)
	createDeadline(t, db, globex.ID, "TVA", models.PeriodMonthly, testNow.AddDate(0, 0, 1), models.StatusPending)

	results, err := svc.SendCustom(user.ID, CustomReminderParams{
		EmailMessage: "Rappel {deadline_type} pour {client_name}",
		DeadlineType: "TVA",
		ClientID:     &acme.ID,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.Len(t, email.sent, 1)
	assert.Equal(t, "Rappel TVA pour Acme", email.sent[0].Body)
}

func TestSendCustomRequiresAMessage(t *testing.T) {
	db := newTestDB(t)
	svc, _, _ := newTestReminderService(t, db, testNow)

	user := createUser(t, db, "fatima")
	_, err := svc.SendCustom(user.ID, CustomReminderParams{})
	require.Error(t, err)
}
