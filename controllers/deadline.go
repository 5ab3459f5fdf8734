package controllers

import (
	"errors"
	"net/http"
	"time"

	"comptapilot-backend/config"
	"comptapilot-backend/models"
	"comptapilot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateDeadlineInput defines the expected JSON structure
type CreateDeadlineInput struct {
	ClientID string `json:"clientId" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=TVA CNSS IR IS Other"`
	Period   string `json:"period" binding:"required,oneof='One Time' Mensuel Trimestriel Annuel"`
	DueDate  string `json:"dueDate" binding:"required"` // YYYY-MM-DD
	Status   string `json:"status" binding:"omitempty,oneof=Pending Done"`
}

// UpdateDeadlineInput defines the expected JSON structure
type UpdateDeadlineInput struct {
	Type    *string `json:"type" binding:"omitempty,oneof=TVA CNSS IR IS Other"`
	Period  *string `json:"period" binding:"omitempty,oneof='One Time' Mensuel Trimestriel Annuel"`
	DueDate *string `json:"dueDate"`
	Status  *string `json:"status" binding:"omitempty,oneof=Pending Done"`
}

// DeadlineView is the list row joined with its client.
type DeadlineView struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"clientId"`
	ClientName string    `json:"clientName"`
	ClientType string    `json:"clientType"`
	Type       string    `json:"type"`
	Period     string    `json:"period"`
	DueDate    time.Time `json:"dueDate"`
	Status     string    `json:"status"`
	EmailSent  bool      `json:"emailSent"`
	SMSSent    bool      `json:"smsSent"`
}

func CreateDeadline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateDeadlineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	clientID, err := uuid.Parse(input.ClientID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	dueDate, err := time.Parse("2006-01-02", input.DueDate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid due date, expected YYYY-MM-DD")
		return
	}

	// The client must belong to the caller.
	var client models.Client
	if err := config.DB.Where("user_id = ? AND id = ?", userID, clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	deadline := models.Deadline{
		ClientID: clientID,
		Type:     input.Type,
		Period:   input.Period,
		DueDate:  utils.BeginningOfDay(dueDate),
		Status:   input.Status,
	}
	if deadline.Status == "" {
		deadline.Status = models.StatusPending
	}

	if err := config.DB.Create(&deadline).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create deadline")
		return
	}

	c.JSON(http.StatusCreated, deadline)
}

func GetDeadlines(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := config.DB.Table("deadlines").
		Select(`deadlines.id, deadlines.client_id, clients.name AS client_name,
			clients.type AS client_type, deadlines.type, deadlines.period,
			deadlines.due_date, deadlines.status, deadlines.email_sent, deadlines.sms_sent`).
		Joins("JOIN clients ON clients.id = deadlines.client_id").
		Where("clients.user_id = ?", userID).
		Where("deadlines.deleted_at IS NULL AND clients.deleted_at IS NULL")

	if status := c.Query("status"); status != "" {
		query = query.Where("deadlines.status = ?", status)
	}

	var deadlines []DeadlineView
	if err := query.Order("deadlines.due_date ASC").Scan(&deadlines).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve deadlines")
		return
	}

	c.JSON(http.StatusOK, deadlines)
}

func GetDeadline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deadlineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid deadline ID format")
		return
	}

	deadline, ok := findUserDeadline(c, userID, deadlineID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, deadline)
}

func UpdateDeadline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deadlineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid deadline ID format")
		return
	}

	var input UpdateDeadlineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	deadline, ok := findUserDeadline(c, userID, deadlineID)
	if !ok {
		return
	}

	if input.Type != nil {
		deadline.Type = *input.Type
	}
	if input.Period != nil {
		deadline.Period = *input.Period
	}
	if input.Status != nil {
		deadline.Status = *input.Status
	}
	if input.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *input.DueDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid due date, expected YYYY-MM-DD")
			return
		}
		// Moving a deadline starts a fresh reminder state for the new date.
		deadline.DueDate = utils.BeginningOfDay(dueDate)
		deadline.EmailSent = false
		deadline.SMSSent = false
	}

	if err := config.DB.Save(&deadline).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update deadline")
		return
	}

	c.JSON(http.StatusOK, deadline)
}

func DeleteDeadline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deadlineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid deadline ID format")
		return
	}

	deadline, ok := findUserDeadline(c, userID, deadlineID)
	if !ok {
		return
	}

	if err := config.DB.Unscoped().Delete(&deadline).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete deadline")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deadline deleted successfully"})
}

// findUserDeadline loads a deadline only if it belongs to one of the
// caller's clients.
func findUserDeadline(c *gin.Context, userID, deadlineID uuid.UUID) (models.Deadline, bool) {
	var deadline models.Deadline
	err := config.DB.
		Joins("JOIN clients ON clients.id = deadlines.client_id").
		Where("clients.user_id = ? AND deadlines.id = ?", userID, deadlineID).
		First(&deadline).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Deadline not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return models.Deadline{}, false
	}
	return deadline, true
}
