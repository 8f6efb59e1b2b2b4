package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"xiview-api/metrics"
)

const bytesPerMB = 1024 * 1024

// writeJSON answers with compact JSON. Payloads can be large for big
// projects, so the size is logged and recorded.
func writeJSON(c *gin.Context, log *zap.Logger, m *metrics.Metrics, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error("Encoding response failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encoding error"})
		return
	}

	route := c.FullPath()
	m.ObservePayload(route, len(body))
	log.Debug("Response payload",
		zap.String("route", route),
		zap.Float64("size_mb", float64(len(body))/bytesPerMB))
	c.Data(status, "application/json", body)
}

func dbError(c *gin.Context, log *zap.Logger, msg string, err error, fields ...zap.Field) {
	log.Error(msg, append(fields, zap.Error(err))...)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
}
