// controllers/reminder.go
package controllers

import (
	"net/http"

	"comptapilot-backend/services"
	"comptapilot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SendIndividualEmail sends one on-demand reminder for a single deadline,
// outside the batch cycle.
func SendIndividualEmail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deadlineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid deadline ID format")
		return
	}

	// Ownership check before touching the send path.
	if _, ok := findUserDeadline(c, userID, deadlineID); !ok {
		return
	}

	if err := reminderService.SendIndividualEmail(deadlineID); err != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to send email: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}

// CustomReminderInput carries user-authored template text plus the filters
// it applies to. The template is persisted, then dispatched.
type CustomReminderInput struct {
	CreateTemplateInput
}

func SendCustomReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CustomReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	template, ok := buildTemplate(c, userID, input.CreateTemplateInput)
	if !ok {
		return
	}
	if err := saveTemplate(&template); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save template")
		return
	}

	params := services.CustomReminderParams{
		EmailMessage: input.EmailMessage,
		SMSMessage:   input.SMSMessage,
		EmailSubject: input.EmailSubject,
		DeadlineType: input.DeadlineType,
		ClientID:     template.ClientID,
		DaysBefore:   input.DaysBefore,
	}

	results, err := reminderService.SendCustom(userID, params)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message":  "Template saved; no matching deadlines found",
			"template": template,
			"results":  []services.SendResult{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"template": template,
		"results":  results,
	})
}
