package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/san-kum/navtrace/internal/plotly"
	"github.com/san-kum/navtrace/internal/session"
	"github.com/san-kum/navtrace/internal/storage"
)

//go:embed web/*
var webFiles embed.FS

var indexPage = template.Must(template.ParseFS(webFiles, "web/index.html"))

type Options struct {
	Addr        string
	BodyLimit   string
	CORSOrigins []string
	// Persist stores every successful upload in Store.
	Persist   bool
	PlotlyCDN string
	SVGWidth  int
	SVGHeight int
	Version   string
	// Quiet disables the request logger.
	Quiet bool
}

type Server struct {
	e     *echo.Echo
	opts  Options
	mgr   *session.Manager
	store *storage.Store
}

// New wires the routes. store may be nil, which disables the library
// endpoints and persistence.
func New(mgr *session.Manager, store *storage.Store, opts Options) *Server {
	if opts.BodyLimit == "" {
		opts.BodyLimit = "64M"
	}
	if opts.PlotlyCDN == "" {
		opts.PlotlyCDN = plotly.DefaultCDN
	}
	if opts.SVGWidth <= 0 || opts.SVGHeight <= 0 {
		opts.SVGWidth, opts.SVGHeight = 800, 600
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler

	if !opts.Quiet {
		e.Logger.SetLevel(log.INFO)
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Skipper: func(c echo.Context) bool {
				return c.Request().URL.Path == "/api/health"
			},
		}))
	}
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(opts.BodyLimit))
	if len(opts.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	s := &Server{e: e, opts: opts, mgr: mgr, store: store}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/", s.HandleIndex)
	s.e.GET("/viewer.js", s.HandleViewerJS)

	api := s.e.Group("/api")
	api.GET("/health", s.HandleHealth)

	traces := api.Group("/traces")
	traces.POST("", s.HandleUpload)
	traces.GET("", s.HandleList)
	traces.GET("/current/figure", s.HandleCurrentFigure)
	traces.GET("/:id", s.HandleGet)
	traces.GET("/:id/figure", s.HandleFigure)
	traces.GET("/:id/frames/:step/svg", s.HandleFrameSVG)
	traces.POST("/:id/select", s.HandleSelect)
	traces.DELETE("/:id", s.HandleDelete)

	if s.store != nil {
		lib := api.Group("/library")
		lib.GET("", s.HandleLibraryList)
		lib.POST("/:id/load", s.HandleLibraryLoad)
		lib.DELETE("/:id", s.HandleLibraryDelete)
	}
}

// Handler exposes the router for tests and custom servers.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Echo() *echo.Echo { return s.e }

func (s *Server) Start() error {
	s.e.Logger.Infof("navtrace %s listening on %s", s.opts.Version, s.opts.Addr)
	srv := &http.Server{
		Addr:              s.opts.Addr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.e.StartServer(srv)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
