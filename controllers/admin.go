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

type AdminUserView struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	IsApproved bool      `json:"isApproved"`
	IsAdmin    bool      `json:"isAdmin"`
	Clients    int64     `json:"clients"`
}

func GetUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}

	views := make([]AdminUserView, 0, len(users))
	for _, user := range users {
		var clientCount int64
		config.DB.Model(&models.Client{}).Where("user_id = ?", user.ID).Count(&clientCount)
		views = append(views, AdminUserView{
			ID:         user.ID,
			Username:   user.Username,
			Name:       user.Name,
			Email:      user.Email,
			Phone:      user.Phone,
			IsApproved: user.IsApproved,
			IsAdmin:    user.IsAdmin,
			Clients:    clientCount,
		})
	}

	c.JSON(http.StatusOK, views)
}

func ApproveUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Model(&user).Update("is_approved", true).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to approve user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User approved"})
}

// AdminDeleteUser removes a user and everything they own.
func AdminDeleteUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		var clientIDs []uuid.UUID
		if err := tx.Model(&models.Client{}).Where("user_id = ?", userID).
			Pluck("id", &clientIDs).Error; err != nil {
			return err
		}
		if len(clientIDs) > 0 {
			if err := tx.Unscoped().Delete(&models.Deadline{}, "client_id IN ?", clientIDs).Error; err != nil {
				return err
			}
		}
		for _, model := range []interface{}{
			&models.Client{}, &models.MessageTemplate{}, &models.Note{},
			&models.EmailLog{}, &models.SMSLog{},
		} {
			if err := tx.Unscoped().Delete(model, "user_id = ?", userID).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// AdminDeleteClient removes any client regardless of owner.
func AdminDeleteClient(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
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

func AdminDeleteDeadline(c *gin.Context) {
	deadlineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid deadline ID format")
		return
	}

	result := config.DB.Unscoped().Delete(&models.Deadline{}, "id = ?", deadlineID)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete deadline")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Deadline not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deadline deleted successfully"})
}

type RunRemindersInput struct {
	Days     []int  `json:"days"`
	Username string `json:"username"`
}

// RunReminders triggers one dispatcher cycle plus the rollover pass, the
// same sequence the scheduler and the batch binary run.
func RunReminders(c *gin.Context) {
	var input RunRemindersInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	days := input.Days
	if len(days) == 0 {
		var err error
		if days, err = cfg.ReminderDays(); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}
	for _, d := range days {
		if d < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Lead times must be non-negative")
			return
		}
	}

	if err := reminderService.RunCycle(days, input.Username); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Reminder cycle failed: "+err.Error())
		return
	}
	if err := rolloverService.ProcessTodayDeadlines(); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Rollover failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder cycle and rollover completed", "days": days})
}
