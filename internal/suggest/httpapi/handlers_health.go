package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName     = "Staff Management AI Assistant"
	serviceVersion  = "1.0.0"
	serviceLanguage = "UK English"
)

func handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  serviceName,
		"version":  serviceVersion,
		"language": serviceLanguage,
	})
}

func handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func handleReadyz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
