package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/felixhommels/mcsbt-capstone-be/internal/enrich"
	"github.com/felixhommels/mcsbt-capstone-be/internal/stats"
	"github.com/felixhommels/mcsbt-capstone-be/internal/store"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

type flightIDRequest struct {
	FlightID string `json:"flight_id" form:"flight_id" binding:"required"`
}

// statusFor maps a failure to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, enrich.ErrInvalidTimeSpec):
		return http.StatusBadRequest
	case errors.Is(err, enrich.ErrStaleRequest), errors.Is(err, enrich.ErrReferenceDataMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, enrich.ErrTelemetryNotFound), errors.Is(err, store.ErrFlightNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "route", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// boolQuery parses an optional boolean query parameter, answering 400 on
// anything strconv.ParseBool rejects.
func boolQuery(c *gin.Context, name string) (bool, bool) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a boolean"})
		return false, false
	}
	return v, true
}

// ownsFlight reports whether the token subject owns flightID. Flights of
// other users answer 404 like unknown ones.
func (s *Server) ownsFlight(c *gin.Context, flightID string) bool {
	rec, err := s.deps.Store.Get(c.Request.Context(), flightID)
	if err == nil && rec.UserID != subject(c) {
		err = store.ErrFlightNotFound
	}
	if err != nil {
		writeError(c, err)
		return false
	}
	return true
}

func (s *Server) handleEnrich(c *gin.Context) {
	var req enrich.EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	if !authorize(c, req.UserID) {
		return
	}
	rec, err := s.deps.Enricher.EnrichAndStore(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleManual(c *gin.Context) {
	var in models.ManualFlight
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	if !authorize(c, in.UserID) {
		return
	}
	rec, err := s.deps.Enricher.ManualAndStore(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleListFlights(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	if !authorize(c, userID) {
		return
	}
	includeDeleted, ok := boolQuery(c, "include_deleted")
	if !ok {
		return
	}

	flights, err := s.deps.Store.QueryByUser(c.Request.Context(), userID, includeDeleted)
	if err != nil {
		writeError(c, err)
		return
	}
	if flights == nil {
		flights = []models.FlightRecord{}
	}
	c.JSON(http.StatusOK, flights)
}

func (s *Server) handleSoftDelete(c *gin.Context) {
	var req flightIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flight_id required"})
		return
	}
	if !s.ownsFlight(c, req.FlightID) {
		return
	}
	if err := s.deps.Store.MarkDeleted(c.Request.Context(), req.FlightID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "flight deleted"})
}

func (s *Server) handlePurge(c *gin.Context) {
	var req flightIDRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flight_id required"})
		return
	}
	if !s.ownsFlight(c, req.FlightID) {
		return
	}
	if err := s.deps.Store.Purge(c.Request.Context(), req.FlightID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "flight purged"})
}

func (s *Server) handleStatistics(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	if !authorize(c, userID) {
		return
	}
	yearly, ok := boolQuery(c, "yearly")
	if !ok {
		return
	}

	flights, err := s.deps.Store.QueryByUser(c.Request.Context(), userID, false)
	if err != nil {
		writeError(c, err)
		return
	}
	if yearly {
		c.JSON(http.StatusOK, stats.AggregateYearly(flights))
		return
	}
	c.JSON(http.StatusOK, stats.Aggregate(flights))
}

func (s *Server) handleRouteInfo(c *gin.Context) {
	dep, arr := c.Query("dep_iata"), c.Query("arr_iata")
	if dep == "" || arr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dep_iata and arr_iata required"})
		return
	}
	if s.deps.Routes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "route lookup not configured"})
		return
	}
	options, err := s.deps.Routes.Find(c.Request.Context(), dep, arr)
	if err != nil {
		log.Warn("route lookup failed", "dep_iata", dep, "arr_iata", arr, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "route provider unavailable"})
		return
	}
	c.JSON(http.StatusOK, options)
}
