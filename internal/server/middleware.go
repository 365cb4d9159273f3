package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"proja/internal/locale"
)

const langKey = "lang"

// zapMiddleware logs one line per request.
func zapMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}

// languageMiddleware resolves Accept-Language to a supported language,
// using fallback when the header is absent or names no supported language.
func languageMiddleware(fallback string) gin.HandlerFunc {
	fallback = locale.Normalize(fallback)
	return func(c *gin.Context) {
		lang := fallback
		if header := c.GetHeader("Accept-Language"); header != "" {
			lang = locale.Resolve(header, fallback)
		}
		c.Set(langKey, lang)
		c.Next()
	}
}

func getLang(c *gin.Context) string {
	if lang, ok := c.Get(langKey); ok {
		if s, ok := lang.(string); ok {
			return s
		}
	}
	return locale.LanguageEn
}
