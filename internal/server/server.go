// =============================================================================
// Slip Report - HTTP Server
// =============================================================================
//
// This module exposes the analyzer over HTTP.
//
// ENDPOINTS:
//   GET  /healthz                          - liveness
//   POST /api/analyze                      - analyze a raw or multipart ("file") upload
//   GET  /api/report/:kind/sort?column=c   - re-sort the last result (toggles direction)
//   GET  /api/report/export?format=f       - download the last result
//
// The last successful analysis is kept in memory so the sort endpoint can
// toggle like a clickable table header. A new upload resets the sort state.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ginjaninja78/slip-report/internal/analyzer"
	"github.com/ginjaninja78/slip-report/internal/csvparser"
	"github.com/ginjaninja78/slip-report/internal/export"
	"github.com/ginjaninja78/slip-report/internal/filter"
	"github.com/ginjaninja78/slip-report/internal/schema"
	"github.com/ginjaninja78/slip-report/internal/sorter"
)

// Options configures a Server.
type Options struct {
	// Analysis is the base configuration; filter and sort come per request.
	Analysis analyzer.Options

	// MaxUploadMB caps request bodies.
	MaxUploadMB int
}

// Server is the HTTP surface.
type Server struct {
	echo   *echo.Echo
	logger analyzer.Logger
	opts   Options

	// mu guards current and the sorter state so a toggle always applies to
	// the result it was computed for.
	mu      sync.RWMutex
	current *analyzer.Result
	sorter  *sorter.Sorter
}

// New builds a Server with its routes registered.
func New(logger analyzer.Logger, opts Options) *Server {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 32
	}

	s := &Server{
		echo:   echo.New(),
		logger: logger,
		opts:   opts,
		sorter: sorter.New(),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", opts.MaxUploadMB)))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debugf("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})
	e.POST("/api/analyze", s.handleAnalyze)
	e.GET("/api/report/:kind/sort", s.handleSort)
	e.GET("/api/report/export", s.handleExport)

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Infof("Listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// analyzeResponse is the JSON body of a successful analysis.
type analyzeResponse struct {
	export.Document
	AbsentColumns []string `json:"absent_columns"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	criteria, err := filter.New(c.QueryParam("supervisor"), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return badRequest(c, err)
	}

	source, body, err := readUpload(c)
	if err != nil {
		return badRequest(c, err)
	}
	defer body.Close()

	opts := s.opts.Analysis
	opts.Filter = criteria
	opts.SupervisorSort = c.QueryParam("supervisor_sort")
	opts.WardSort = c.QueryParam("ward_sort")
	opts.Direction = sorter.ParseDirection(c.QueryParam("direction"))

	result, err := analyzer.New(s.logger, opts).AnalyzeReader(c.Request().Context(), source, body)
	if err != nil {
		var schemaErr *schema.SchemaError
		switch {
		case errors.As(err, &schemaErr):
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":   err.Error(),
				"missing": schemaErr.Missing,
				"found":   schemaErr.Found,
			})
		case errors.Is(err, csvparser.ErrEmptyInput), errors.Is(err, sorter.ErrUnknownColumn):
			return badRequest(c, err)
		default:
			s.logger.Errorf("Analysis of %s failed: %v", source, err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
		}
	}

	s.mu.Lock()
	s.current = result
	s.sorter.Reset()
	s.mu.Unlock()

	return c.JSON(http.StatusOK, analyzeResponse{Document: result.Document(), AbsentColumns: result.Absent})
}

// readUpload returns the upload name and body. Multipart requests carry the
// file in the "file" field; anything else is the raw body.
func readUpload(c echo.Context) (string, io.ReadCloser, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("missing multipart field \"file\": %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		return fh.Filename, f, nil
	}

	source := c.QueryParam("name")
	if source == "" {
		source = "upload.csv"
	}
	return source, c.Request().Body, nil
}

type sortResponse struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
	Entries   any    `json:"entries"`
}

func (s *Server) handleSort(c echo.Context) error {
	column := c.QueryParam("column")
	var (
		entries any
		state   sorter.State
		err     error
	)

	s.mu.Lock()
	current := s.current
	if current == nil {
		s.mu.Unlock()
		return noResult(c)
	}
	switch sorter.ReportKind(c.Param("kind")) {
	case sorter.SupervisorReport:
		entries, state, err = s.sorter.Supervisors(current.Supervisors.Entries, column)
	case sorter.WardReport:
		entries, state, err = s.sorter.Wards(current.Wards.Entries, column)
	default:
		s.mu.Unlock()
		return c.JSON(http.StatusNotFound, map[string]any{"error": "unknown report " + c.Param("kind")})
	}
	s.mu.Unlock()

	if err != nil {
		return badRequest(c, err)
	}

	return c.JSON(http.StatusOK, sortResponse{
		Column:    state.Column,
		Direction: state.Direction.String(),
		Entries:   entries,
	})
}

var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xml":  echo.MIMEApplicationXMLCharsetUTF8,
	".json": echo.MIMEApplicationJSONCharsetUTF8,
	".csv":  "text/csv; charset=utf-8",
}

func (s *Server) handleExport(c echo.Context) error {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current == nil {
		return noResult(c)
	}

	artifacts, err := export.Artifacts(strings.ToLower(c.QueryParam("format")))
	if err != nil {
		return badRequest(c, err)
	}

	art := artifacts[0]
	if want := c.QueryParam("report"); want != "" {
		found := false
		for _, a := range artifacts {
			if a.Report == want {
				art, found = a, true
				break
			}
		}
		if !found {
			return badRequest(c, fmt.Errorf("format %s has no %q report", c.QueryParam("format"), want))
		}
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, contentTypes[art.Ext])
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", art.Report+art.Ext))
	res.WriteHeader(http.StatusOK)
	return art.Write(res, current.Document())
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
}

func noResult(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]any{"error": "no analysis yet; POST /api/analyze first"})
}
