package controllers

import (
	"net/http"

	"comptapilot-backend/config"
	"comptapilot-backend/services"
	"comptapilot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	cfg             *config.Config
	reminderService *services.ReminderService
	rolloverService *services.RolloverService
)

// Init wires the controllers to the loaded configuration. Must be called
// after config.ConnectDB.
func Init(c *config.Config) {
	cfg = c
	reminderService = services.NewReminderService(config.DB, c)
	rolloverService = services.NewRolloverService(config.DB)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	raw, ok := value.(string)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID in context")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}
