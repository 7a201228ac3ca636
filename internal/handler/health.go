package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} model.PingResponse
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Root godoc
// @Summary Service info
// @Tags health
// @Produce json
// @Success 200 {object} model.RootResponse
// @Router / [get]
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "dqsync API server is running",
	})
}
