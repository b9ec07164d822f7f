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
)

func handleCompletion(cfg *config.Config, log *logger.Logger, eng *engine.Engine, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in CompletionRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			writeBindError(c, err)
			return
		}
		if err := pause(c.Request.Context(), cfg.HTTP.CompletionDelay.Duration); err != nil {
			c.Abort()
			return
		}

		// Metrics and spans carry the table actually used, never the raw
		// client string.
		fieldType := eng.Corpus().FieldType(in.FieldType)
		if strings.TrimSpace(in.Text) == "" {
			m.ObserveCompletion(fieldType, string(engine.StrategyNone))
			c.JSON(http.StatusOK, CompletionResponse{})
			return
		}

		prefix, suffix := splitAtCursor(in.Text, in.CursorPosition)
		_, span := observability.Tracer().Start(c.Request.Context(), "suggest.completion")
		out := eng.Complete(prefix, fieldType, engine.ParseCategory(in.ContextType))
		span.SetAttributes(
			attribute.String("suggest.field_type", fieldType),
			attribute.String("suggest.strategy", string(out.Strategy)),
		)
		span.End()

		m.ObserveCompletion(fieldType, string(out.Strategy))
		log.Debug("completion suggested", append([]interface{}{
			"text", in.Text,
			"field_type", fieldType,
			"strategy", out.Strategy,
		}, ctxutil.LogFields(c.Request.Context())...)...)

		c.JSON(http.StatusOK, CompletionResponse{
			Completion: out.Completion,
			FullText:   out.FullText + suffix,
			Confidence: out.Confidence,
		})
	}
}

// splitAtCursor splits text at a character offset. A missing cursor or one at
// or past the end completes the whole text.
func splitAtCursor(text string, cursor *int) (string, string) {
	if cursor == nil {
		return text, ""
	}
	runes := []rune(text)
	pos := *cursor
	if pos < 0 || pos >= len(runes) {
		return text, ""
	}
	return string(runes[:pos]), string(runes[pos:])
}
