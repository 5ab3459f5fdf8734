package controllers

import (
	"errors"
	"net/http"

	"comptapilot-backend/config"
	"comptapilot-backend/models"
	"comptapilot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateClientInput defines the expected JSON structure
type CreateClientInput struct {
	Name     string `json:"name" binding:"required"`
	ICE      string `json:"ice" binding:"required"`
	IFNumber string `json:"ifNumber"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Type     string `json:"type" binding:"omitempty,oneof=SARL Auto-Entrepreneur SAS Other"`
}

// UpdateClientInput defines the expected JSON structure
type UpdateClientInput struct {
	Name     *string `json:"name"`
	ICE      *string `json:"ice"`
	IFNumber *string `json:"ifNumber"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Type     *string `json:"type" binding:"omitempty,oneof=SARL Auto-Entrepreneur SAS Other"`
}

func CreateClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	client := models.Client{
		UserID:   userID,
		Name:     input.Name,
		ICE:      input.ICE,
		IFNumber: input.IFNumber,
		Email:    input.Email,
		Phone:    input.Phone,
		Type:     input.Type,
	}
	if client.Type == "" {
		client.Type = "Other"
	}

	if err := config.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

func GetClients(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var clients []models.Client
	if err := config.DB.Where("user_id = ?", userID).Order("name ASC").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	c.JSON(http.StatusOK, clients)
}

func GetClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var client models.Client
	if err := config.DB.Preload("Deadlines").
		Where("user_id = ? AND id = ?", userID, clientID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, client)
}

func UpdateClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var client models.Client
	if err := config.DB.Where("user_id = ? AND id = ?", userID, clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.ICE != nil {
		client.ICE = *input.ICE
	}
	if input.IFNumber != nil {
		client.IFNumber = *input.IFNumber
	}
	if input.Email != nil {
		if *input.Email != "" && !utils.IsValidEmail(*input.Email) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
			return
		}
		client.Email = *input.Email
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Type != nil {
		client.Type = *input.Type
	}

	if err := config.DB.Save(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient removes a client and, cascading, its deadlines.
func DeleteClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("user_id = ? AND id = ?", userID, clientID).First(&client).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&models.Deadline{}, "client_id = ?", clientID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&client).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
