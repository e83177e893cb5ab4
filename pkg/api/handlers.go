package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
	"github.com/calebmoore/tweetwatch/pkg/summarize"
)

// errorBody is the JSON shape for every non-2xx response
type errorBody struct {
	Error string `json:"error"`
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}

// getPosts returns posts published inside an inclusive [start, end] range.
// Both bounds are required RFC3339 timestamps.
func (s *Server) getPosts(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		abortError(c, http.StatusBadRequest, "start must be an RFC3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		abortError(c, http.StatusBadRequest, "end must be an RFC3339 timestamp")
		return
	}
	if end.Before(start) {
		abortError(c, http.StatusBadRequest, "end must not precede start")
		return
	}

	posts, err := s.store.GetPostsByTimeRange(start, end)
	if err != nil {
		s.logger.WithError(err).Error("Failed to query posts")
		abortError(c, http.StatusInternalServerError, "failed to query posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(posts),
		"posts": posts,
	})
}

// parsePeriod validates the :period path segment
func parsePeriod(c *gin.Context) (models.SummaryPeriod, bool) {
	p := c.Param("period")
	if !models.ValidPeriod(p) {
		abortError(c, http.StatusBadRequest, "period must be one of short, medium, long")
		return "", false
	}
	return models.SummaryPeriod(p), true
}

func (s *Server) getLatestSummary(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	summary, err := s.store.GetLatestSummary(period)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load latest summary")
		abortError(c, http.StatusInternalServerError, "failed to load summary")
		return
	}
	if summary == nil {
		abortError(c, http.StatusNotFound, "no summary generated yet for this period")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) getSummaryHistory(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		abortError(c, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	if offset < 0 {
		abortError(c, http.StatusBadRequest, "offset must not be negative")
		return
	}

	summaries, err := s.store.GetSummaryHistory(period, limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load summary history")
		abortError(c, http.StatusInternalServerError, "failed to load summary history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(summaries),
		"summaries": summaries,
	})
}

func (s *Server) getSummaryByID(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		abortError(c, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	summary, err := s.store.GetSummaryByID(period, uint(id))
	if err != nil {
		s.logger.WithError(err).Error("Failed to load summary")
		abortError(c, http.StatusInternalServerError, "failed to load summary")
		return
	}
	if summary == nil {
		abortError(c, http.StatusNotFound, "summary not found")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// generateSummary regenerates the period's summary for its current window.
// An optional id query pins the request to a specific summary row; only
// the latest row per period may be regenerated, historical windows are
// immutable.
func (s *Server) generateSummary(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	if rawID := c.Query("id"); rawID != "" {
		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil {
			abortError(c, http.StatusBadRequest, "id must be a positive integer")
			return
		}
		latest, err := s.store.GetLatestSummary(period)
		if err != nil {
			s.logger.WithError(err).Error("Failed to load latest summary")
			abortError(c, http.StatusInternalServerError, "failed to load summary")
			return
		}
		if latest == nil || latest.ID != uint(id) {
			abortError(c, http.StatusUnprocessableEntity, "only the latest summary for a period can be regenerated")
			return
		}
	}

	summary, err := s.summarizer.TryGenerate(c.Request.Context(), period)
	if err != nil {
		if errors.Is(err, summarize.ErrBusy) {
			abortError(c, http.StatusConflict, "summary generation already in progress")
			return
		}
		s.logger.WithError(err).Error("On-demand summary generation failed")
		abortError(c, http.StatusInternalServerError, "summary generation failed")
		return
	}

	c.JSON(http.StatusOK, summary)
}
