package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"comptapilot-backend/config"
	"comptapilot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

// ExportDeadlines streams the caller's deadlines as an Excel workbook —
// a plain data sheet, one deadline per row.
func ExportDeadlines(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var deadlines []DeadlineView
	err := config.DB.Table("deadlines").
		Select(`deadlines.id, deadlines.client_id, clients.name AS client_name,
			clients.type AS client_type, deadlines.type, deadlines.period,
			deadlines.due_date, deadlines.status, deadlines.email_sent, deadlines.sms_sent`).
		Joins("JOIN clients ON clients.id = deadlines.client_id").
		Where("clients.user_id = ?", userID).
		Where("deadlines.deleted_at IS NULL AND clients.deleted_at IS NULL").
		Order("deadlines.due_date ASC").
		Scan(&deadlines).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve deadlines")
		return
	}
	if len(deadlines) == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "No deadlines to export")
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Mes Échéances")
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build export")
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{
		"ID", "Client", "Type Client", "Type Échéance", "Période",
		"Date d'échéance", "Statut", "Email Envoyé", "SMS Envoyé",
	} {
		header.AddCell().SetString(title)
	}

	sentLabel := func(sent bool) string {
		if sent {
			return "Envoyé"
		}
		return "Non envoyé"
	}

	for _, d := range deadlines {
		row := sheet.AddRow()
		row.AddCell().SetString(d.ID.String())
		row.AddCell().SetString(d.ClientName)
		row.AddCell().SetString(d.ClientType)
		row.AddCell().SetString(d.Type)
		row.AddCell().SetString(d.Period)
		row.AddCell().SetString(d.DueDate.Format("2006-01-02"))
		row.AddCell().SetString(d.Status)
		row.AddCell().SetString(sentLabel(d.EmailSent))
		row.AddCell().SetString(sentLabel(d.SMSSent))
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to write export")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "mes_echeances.xlsx"))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
