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

type CreateNoteInput struct {
	Content string `json:"content" binding:"required,max=300"`
}

func CreateNote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Note content is empty")
		return
	}

	note := models.Note{
		UserID:  userID,
		Content: input.Content,
	}
	if err := config.DB.Create(&note).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create note")
		return
	}

	c.JSON(http.StatusCreated, note)
}

func GetNotes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var notes []models.Note
	if err := config.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notes")
		return
	}

	c.JSON(http.StatusOK, notes)
}

func DeleteNote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid note ID format")
		return
	}

	result := config.DB.Unscoped().Where("user_id = ? AND id = ?", userID, noteID).Delete(&models.Note{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete note")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Note not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
