package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"MacroDash/internal/calculator"
	"MacroDash/internal/model"
	"MacroDash/internal/recorder"
	"MacroDash/internal/render"
)

// PageTitle is the dashboard heading.
const PageTitle = "S&P 500 and Macroeconomic Variables Dashboard"

func (s *Server) handleDashboard(c *gin.Context) {
	ds, err := s.data.Get(c.Request.Context())
	if err != nil {
		s.errorPage(c, err)
		return
	}
	corr := calculator.Correlation(ds.Rows)
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":       PageTitle,
		"ChartTitle":  render.ChartTitle,
		"Preview":     render.PreviewTable(ds.Rows),
		"Correlation": render.CorrelationTable(corr),
		"Insights":    render.Insights,
		"Rows":        len(ds.Rows),
		"FetchedAt":   ds.FetchedAt.Format(time.RFC1123),
	})
}

func (s *Server) handleChart(c *gin.Context) {
	ds, err := s.data.Get(c.Request.Context())
	if err != nil {
		s.errorPage(c, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render.WriteChart(c.Writer, ds.Rows); err != nil {
		s.log.Errorf("render chart: %v", err)
	}
}

type dataResponse struct {
	FetchedAt time.Time           `json:"fetched_at"`
	Count     int                 `json:"count"`
	Rows      []model.CombinedRow `json:"rows"`
}

func (s *Server) handleData(c *gin.Context) {
	ds, err := s.data.Get(c.Request.Context())
	if err != nil {
		s.errorJSON(c, err)
		return
	}
	rows := ds.Rows
	if v := c.Query("tail"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tail must be a non-negative integer"})
			return
		}
		rows = calculator.Tail(rows, n)
	}
	if rows == nil {
		rows = []model.CombinedRow{}
	}
	c.JSON(http.StatusOK, dataResponse{FetchedAt: ds.FetchedAt, Count: len(rows), Rows: rows})
}

type correlationResponse struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"` // null where undefined
}

func (s *Server) handleCorrelation(c *gin.Context) {
	ds, err := s.data.Get(c.Request.Context())
	if err != nil {
		s.errorJSON(c, err)
		return
	}
	m := calculator.Correlation(ds.Rows)
	resp := correlationResponse{Columns: m.Columns, Values: make([][]*float64, len(m.Values))}
	for i, row := range m.Values {
		resp.Values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			v := v
			resp.Values[i][j] = &v
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRefreshes(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	events, err := s.rec.RecentRefreshes(limit)
	if err != nil {
		s.errorJSON(c, err)
		return
	}
	if events == nil {
		events = []recorder.RefreshEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"refreshes": events})
}

func (s *Server) handleRefresh(c *gin.Context) {
	ctx := recorder.WithTrigger(c.Request.Context(), "manual")
	ds, err := s.data.Refresh(ctx)
	if err != nil {
		s.errorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed", "rows": len(ds.Rows), "fetched_at": ds.FetchedAt})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"cache": gin.H{
			"store": s.data.StoreName(),
			"stats": s.data.Stats(),
		},
	})
}

func (s *Server) errorPage(c *gin.Context, err error) {
	s.log.WithField("request_id", c.GetString("request_id")).Errorf("load dataset: %v", err)
	c.HTML(statusFor(err), "error.html", gin.H{
		"Title":     PageTitle,
		"Error":     err.Error(),
		"RequestID": c.GetString("request_id"),
	})
}

func (s *Server) errorJSON(c *gin.Context, err error) {
	s.log.WithField("request_id", c.GetString("request_id")).Errorf("%s: %v", c.Request.URL.Path, err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
