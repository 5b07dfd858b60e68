// Package server exposes the FAQ assistant over HTTP: a question
// endpoint and ingestion triggers, plus health and metrics.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mshibata/chienowa/internal/ingest"
	"github.com/mshibata/chienowa/internal/rag"
)

// Answerer is the question-answering boundary, satisfied by rag.Engine.
type Answerer interface {
	Answer(ctx context.Context, query string) rag.Response
}

// Ingestor triggers ingestion runs, satisfied by ingest.Ingestor.
type Ingestor interface {
	IngestDrive(ctx context.Context, folderID string) (ingest.Summary, error)
	IngestSlack(ctx context.Context, channelID string) (ingest.Summary, error)
}

// Options carries the configured default source identifiers, used when a
// request does not name one.
type Options struct {
	DriveFolderID  string
	SlackChannelID string
}

// Server wires handlers onto an echo instance.
type Server struct {
	engine   Answerer
	ingestor Ingestor
	opts     Options
}

func New(engine Answerer, ingestor Ingestor, opts Options) *Server {
	return &Server{engine: engine, ingestor: ingestor, opts: opts}
}

// Echo builds the configured echo instance.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	httpLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		httpLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/ask", s.handleAsk)
	api.POST("/ingest/drive", s.handleIngestDrive)
	api.POST("/ingest/slack", s.handleIngestSlack)
	return e
}

// Run starts the server on addr and blocks.
func (s *Server) Run(addr string) error {
	return s.Echo().Start(addr)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer  string       `json:"answer"`
	Sources []rag.Source `json:"sources"`
}

func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	res := s.engine.Answer(c.Request().Context(), req.Question)
	// A degraded answer is still an answer; the client shows the
	// message either way.
	return c.JSON(http.StatusOK, askResponse{Answer: res.Answer, Sources: res.Sources})
}

type ingestRequest struct {
	FolderID  string `json:"folder_id"`
	ChannelID string `json:"channel_id"`
}

func (s *Server) handleIngestDrive(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	folderID := req.FolderID
	if folderID == "" {
		folderID = s.opts.DriveFolderID
	}
	if folderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "folder_id is not configured")
	}

	summary, err := s.ingestor.IngestDrive(c.Request().Context(), folderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) handleIngestSlack(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	channelID := req.ChannelID
	if channelID == "" {
		channelID = s.opts.SlackChannelID
	}
	if channelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "channel_id is not configured")
	}

	summary, err := s.ingestor.IngestSlack(c.Request().Context(), channelID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
