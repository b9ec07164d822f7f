package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/staffassist-backend/internal/observability"
	"github.com/yungbote/staffassist-backend/internal/platform/logger"
	"github.com/yungbote/staffassist-backend/internal/suggest/config"
	"github.com/yungbote/staffassist-backend/internal/suggest/engine"
	"github.com/yungbote/staffassist-backend/internal/suggest/httpapi/httputil"
)

func handleAlternatives(cfg *config.Config, _ *logger.Logger, eng *engine.Engine, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in AlternativesRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBindError(c, err)
			return
		}
		if err := pause(c.Request.Context(), cfg.HTTP.DescriptionDelay.Duration); err != nil {
			c.Abort()
			return
		}
		if strings.TrimSpace(in.Title) == "" {
			httputil.WriteError(c, http.StatusBadRequest, errEmptyTitle, httputil.CodeInvalidRequest, "title")
			return
		}

		cat := eng.ResolveCategory(engine.ParseCategory(in.Type), in.Title)
		_, span := observability.Tracer().Start(c.Request.Context(), "suggest.alternatives")
		alts := eng.Alternatives(in.Title, cat)
		span.SetAttributes(
			attribute.String("suggest.category", string(cat)),
			attribute.Int("suggest.alternatives", len(alts)),
		)
		span.End()

		items := make([]AlternativeItem, 0, len(alts))
		for _, a := range alts {
			items = append(items, AlternativeItem{Type: a.Subtype, Description: a.Description})
		}
		m.ObserveSuggestion("alternatives", string(cat), "", false)
		c.JSON(http.StatusOK, AlternativesResponse{Alternatives: items})
	}
}
