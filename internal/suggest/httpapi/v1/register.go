package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/staffassist-backend/internal/observability"
	"github.com/yungbote/staffassist-backend/internal/platform/logger"
	"github.com/yungbote/staffassist-backend/internal/suggest/config"
	"github.com/yungbote/staffassist-backend/internal/suggest/engine"
)

func Register(rg *gin.RouterGroup, cfg *config.Config, log *logger.Logger, eng *engine.Engine, m *observability.Metrics) {
	useJSONFieldNames()

	rg.POST("/suggest/description", handleDescription(cfg, log, eng, m))
	rg.POST("/suggest/completion", handleCompletion(cfg, log, eng, m))
	rg.POST("/suggest/alternatives", handleAlternatives(cfg, log, eng, m))
}
