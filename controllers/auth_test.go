package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"comptapilot-backend/config"
	"comptapilot-backend/controllers"
	"comptapilot-backend/models"
	"comptapilot-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	config.DB = db

	testCfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTExpiryHours:  1,
		CountryCode:     "+212",
		ReminderDaysRaw: "20,10,5,1",
	}
	controllers.Init(testCfg)
	return routes.SetupRouter(testCfg)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginRefusedWhilePending(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"username": "fatima",
		"name":     "Fatima Z.",
		"email":    "fatima@comptapilot.test",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	login := gin.H{"identifier": "fatima", "password": "secret-password"}
	w = doJSON(t, router, http.MethodPost, "/auth/login", "", login)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin approval unlocks the account.
	require.NoError(t, config.DB.Model(&models.User{}).
		Where("username = ?", "fatima").
		Update("is_approved", true).Error)

	w = doJSON(t, router, http.MethodPost, "/auth/login", "", login)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	w = doJSON(t, router, http.MethodGet, "/auth/me", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"username": "youssef",
		"name":     "Youssef B.",
		"email":    "youssef@comptapilot.test",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": "youssef",
		"password":   "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	router := newTestRouter(t)

	payload := gin.H{
		"username": "fatima",
		"name":     "Fatima Z.",
		"email":    "fatima@comptapilot.test",
		"password": "secret-password",
	}
	require.Equal(t, http.StatusCreated,
		doJSON(t, router, http.MethodPost, "/auth/register", "", payload).Code)

	payload["email"] = "other@comptapilot.test"
	assert.Equal(t, http.StatusConflict,
		doJSON(t, router, http.MethodPost, "/auth/register", "", payload).Code)
}

func TestAPIRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
