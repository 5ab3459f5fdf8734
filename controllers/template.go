package controllers

import (
	"net/http"
	"strings"

	"comptapilot-backend/config"
	"comptapilot-backend/models"
	"comptapilot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateTemplateInput defines the expected JSON structure
type CreateTemplateInput struct {
	EmailMessage string `json:"emailMessage"`
	SMSMessage   string `json:"smsMessage"`
	EmailSubject string `json:"emailSubject"`
	DeadlineType string `json:"deadlineType" binding:"omitempty,oneof=TVA CNSS IR IS Other"`
	ClientID     string `json:"clientId"`
	DaysBefore   int    `json:"daysBefore" binding:"min=0"`
}

func CreateTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	template, ok := buildTemplate(c, userID, input)
	if !ok {
		return
	}

	if err := config.DB.Create(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}

// GetTemplates lists the caller's templates, newest first — the order the
// reminder sender resolves them in.
func GetTemplates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var templates []models.MessageTemplate
	if err := config.DB.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}

	c.JSON(http.StatusOK, templates)
}

// GetTemplateVariables lists the placeholders a template may reference.
func GetTemplateVariables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"variables": utils.TemplateFields})
}

func DeleteTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	result := config.DB.Unscoped().
		Where("user_id = ? AND id = ?", userID, templateID).
		Delete(&models.MessageTemplate{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

func saveTemplate(template *models.MessageTemplate) error {
	return config.DB.Create(template).Error
}

// buildTemplate validates and converts input into a MessageTemplate owned
// by the caller. A template with neither message body is rejected.
func buildTemplate(c *gin.Context, userID uuid.UUID, input CreateTemplateInput) (models.MessageTemplate, bool) {
	if strings.TrimSpace(input.EmailMessage) == "" && strings.TrimSpace(input.SMSMessage) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "At least one message template (email or SMS) is required")
		return models.MessageTemplate{}, false
	}

	template := models.MessageTemplate{
		UserID:     userID,
		DaysBefore: input.DaysBefore,
	}
	if msg := strings.TrimSpace(input.EmailMessage); msg != "" {
		template.EmailMessage = &msg
	}
	if msg := strings.TrimSpace(input.SMSMessage); msg != "" {
		template.SMSMessage = &msg
	}
	if subject := strings.TrimSpace(input.EmailSubject); subject != "" {
		template.EmailSubject = &subject
	}
	if input.DeadlineType != "" {
		template.DeadlineType = &input.DeadlineType
	}
	if input.ClientID != "" {
		clientID, err := uuid.Parse(input.ClientID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return models.MessageTemplate{}, false
		}
		var client models.Client
		if err := config.DB.Where("user_id = ? AND id = ?", userID, clientID).First(&client).Error; err != nil {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
			return models.MessageTemplate{}, false
		}
		template.ClientID = &clientID
	}
	return template, true
}
