package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	bookingRepo "voicedesk/database/repository/booking"
	callRepo "voicedesk/database/repository/call"
	"voicedesk/utils"
)

// adminCacheTTL bounds how stale the admin list views can be.
const adminCacheTTL = 30 * time.Second

// AdminHandlers exposes read-only operational views over calls, transcripts
// and bookings. List responses are cached briefly; transcripts are served
// fresh because they grow while a call is still running.
type AdminHandlers struct {
	Calls    callRepo.Repository
	Bookings bookingRepo.Repository
	Cache    *redis.Client // nil disables response caching
	Logger   *zap.Logger
}

func (h *AdminHandlers) ListCalls(c *gin.Context) {
	limit := queryLimit(c)
	key := fmt.Sprintf("admin:calls:%d", limit)
	if raw, ok := h.cached(c, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}

	calls, err := h.Calls.ListCalls(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error("failed to list calls", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list calls", err.Error())
		return
	}
	h.respondAndCache(c, key, gin.H{"calls": calls})
}

func (h *AdminHandlers) GetTranscript(c *gin.Context) {
	callID := c.Param("callID")
	entries, err := h.Calls.ListTranscripts(c.Request.Context(), callID)
	if err != nil {
		h.Logger.Error("failed to load transcript", zap.String("call_id", callID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load transcript", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "transcript": entries})
}

func (h *AdminHandlers) ListBookings(c *gin.Context) {
	limit := queryLimit(c)
	key := fmt.Sprintf("admin:bookings:%d", limit)
	if raw, ok := h.cached(c, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}

	bookings, err := h.Bookings.List(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error("failed to list bookings", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings", err.Error())
		return
	}
	h.respondAndCache(c, key, gin.H{"bookings": bookings})
}

func (h *AdminHandlers) cached(c *gin.Context, key string) ([]byte, bool) {
	if h.Cache == nil {
		return nil, false
	}
	raw, err := h.Cache.Get(c.Request.Context(), key).Bytes()
	if err != nil {
		if err != redis.Nil {
			h.Logger.Warn("admin cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return raw, true
}

func (h *AdminHandlers) respondAndCache(c *gin.Context, key string, payload gin.H) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusOK, payload)
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Set(c.Request.Context(), key, body, adminCacheTTL).Err(); err != nil {
			h.Logger.Warn("admin cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func queryLimit(c *gin.Context) int64 {
	limit := int64(100)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}
