package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/staffassist-backend/internal/observability"
	"github.com/yungbote/staffassist-backend/internal/platform/ctxutil"
	"github.com/yungbote/staffassist-backend/internal/platform/logger"
	"github.com/yungbote/staffassist-backend/internal/suggest/config"
	"github.com/yungbote/staffassist-backend/internal/suggest/engine"
	"github.com/yungbote/staffassist-backend/internal/suggest/httpapi/httputil"
)

const errEmptyTitle = "Title cannot be empty"

func handleDescription(cfg *config.Config, log *logger.Logger, eng *engine.Engine, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in DescriptionRequest
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

		_, span := observability.Tracer().Start(c.Request.Context(), "suggest.description")
		out := eng.Suggest(engine.SuggestRequest{
			Title:      in.Title,
			Category:   engine.ParseCategory(in.Type),
			Context:    in.Context,
			Regenerate: in.Regenerate,
		})
		span.SetAttributes(
			attribute.String("suggest.category", string(out.Category)),
			attribute.String("suggest.subtype", out.Subtype),
			attribute.Bool("suggest.regenerate", in.Regenerate),
		)
		span.End()

		m.ObserveSuggestion("description", string(out.Category), out.Subtype, in.Regenerate)
		log.Debug("description suggested", append([]interface{}{
			"title", in.Title,
			"category", out.Category,
			"subtype", out.Subtype,
			"regenerate", in.Regenerate,
		}, ctxutil.LogFields(c.Request.Context())...)...)

		alts := out.Alternatives
		if alts == nil {
			alts = []string{}
		}
		c.JSON(http.StatusOK, DescriptionResponse{
			Suggestion:   out.Text,
			Alternatives: alts,
			Confidence:   out.Confidence,
		})
	}
}
