package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/foxseedlab/vclog/internal/stats"
	"github.com/gin-gonic/gin"
)

const messageLoadFailed = "failed to load presence log"

type Handler struct {
	stats *stats.Service
}

func NewHandler(svc *stats.Service) *Handler {
	return &Handler{stats: svc}
}

func (h *Handler) TodayUsage(c *gin.Context) {
	result, err := h.stats.TodayUsage(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toChannelUsages(result))
}

func (h *Handler) WeeklyUsage(c *gin.Context) {
	result, err := h.stats.WeeklyUsage(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toDailyChannelUsages(result))
}

func (h *Handler) TotalUsage(c *gin.Context) {
	result, err := h.stats.TotalUsage(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toChannelUsages(result))
}

func (h *Handler) Ranking(c *gin.Context) {
	result, err := h.stats.Ranking(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toChannelRanks(result))
}

func (h *Handler) UserRanking(c *gin.Context) {
	result, err := h.stats.UserRanking(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserRanks(result))
}

func (h *Handler) MonthlyReport(c *gin.Context) {
	year, errYear := strconv.Atoi(c.Query("year"))
	month, errMonth := strconv.Atoi(c.Query("month"))
	if errYear != nil || errMonth != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year and month query parameters must be integers"})
		return
	}
	result, err := h.stats.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toMonthlyReport(result))
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, stats.ErrInvalidArgument) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slog.Error("usage query failed", "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": messageLoadFailed})
}
