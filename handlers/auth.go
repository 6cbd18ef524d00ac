package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voicedesk/config"
	"voicedesk/utils"
)

type adminLoginRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// AdminLoginHandler exchanges the configured admin API key for a JWT.
func AdminLoginHandler(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "api_key is required", err.Error())
		return
	}

	if config.AppConfig.AdminAPIKey == "" || req.APIKey != config.AppConfig.AdminAPIKey {
		utils.JSONError(c, http.StatusUnauthorized, "invalid API key", "")
		return
	}

	token, err := utils.GenerateToken("admin", 12*time.Hour)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": int((12 * time.Hour).Seconds())})
}
