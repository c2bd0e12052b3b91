package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Status messages
var statusMessages = map[int]string{
	200: "Ok",
	201: "Created",
	301: "Moved Permanently",
	302: "Found",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	409: "Conflict",
	401: "Unauthorized",
	422: "Unprocessable Entity",
	429: "Too many requests",
	500: "Internal Server Error",
	503: "Service Unavailable",
}

// Map HTTP status codes to zap log levels
var statusToLevel = map[int]zapcore.Level{
	200: zap.InfoLevel,
	201: zap.InfoLevel,
	301: zap.InfoLevel,
	302: zap.InfoLevel,
	400: zap.WarnLevel,
	403: zap.WarnLevel,
	401: zap.WarnLevel,
	// Unknown slugs are routine for a shortener.
	404: zap.InfoLevel,
	409: zap.WarnLevel,
	422: zap.WarnLevel,
	429: zap.InfoLevel,
	500: zap.ErrorLevel,
	503: zap.ErrorLevel,
}

func LoggingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		duration := time.Since(start)
		statusCode := c.Response().StatusCode()
		responseBody := c.Response().Body()

		fields := []zap.Field{
			zap.String("err", responseError(c.Response().Header.ContentType(), responseBody)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", statusCode),
			zap.Duration("duration", duration),
		}

		level, ok := statusToLevel[statusCode]
		if !ok {
			level = zap.InfoLevel
		}

		message, ok := statusMessages[statusCode]
		if !ok {
			message = fmt.Sprintf("Unknown status %d", statusCode)
		}

		switch level {
		case zap.DebugLevel:
			logger.Debug(message, fields...)
		case zap.InfoLevel:
			logger.Info(message, fields...)
		case zap.WarnLevel:
			logger.Warn(message, fields...)
		case zap.ErrorLevel:
			logger.Error(message, fields...)
		case zap.DPanicLevel:
			logger.DPanic(message, fields...)
		case zap.PanicLevel:
			logger.Panic(message, fields...)
		case zap.FatalLevel:
			logger.Fatal(message, fields...)
		}

		return err
	}
}

// responseError pulls the message out of either error body shape:
// {"error": "..."} or {"error": {"message": "..."}}.
func responseError(contentType, body []byte) string {
	if !bytes.HasPrefix(contentType, []byte(fiber.MIMEApplicationJSON)) {
		return ""
	}
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return ""
	}
	var message string
	if err := json.Unmarshal(payload.Error, &message); err == nil {
		return message
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}
