package dashboard

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/reliefdash/internal/analysis"
	"github.com/KaramelBytes/reliefdash/internal/charts"
	"github.com/KaramelBytes/reliefdash/internal/dataset"
)

// TableSource supplies the prepared table. *dataset.Preparer satisfies it.
type TableSource interface {
	Prepare(ctx context.Context) (*dataset.CleanedTable, error)
}

// Options controls what the dashboard shows.
type Options struct {
	PreviewRows int
	Charts      charts.Options
}

// Server serves one dashboard session over HTTP.
type Server struct {
	src     TableSource
	opt     Options
	logger  *zap.Logger
	session string
	engine  *gin.Engine

	mu     sync.Mutex
	images map[charts.Kind][]byte
}

// New builds the router for src.
func New(src TableSource, opt Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opt.PreviewRows <= 0 {
		opt.PreviewRows = analysis.DefaultOptions().SampleRows
	}
	opt.Charts.Format = "png"
	s := &Server{
		src:     src,
		opt:     opt,
		logger:  logger,
		session: uuid.NewString(),
		images:  make(map[charts.Kind][]byte),
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	s.RegisterRoutes(r)
	s.engine = r
	return s
}

// Session returns the id stamped on every response of this server.
func (s *Server) Session() string { return s.session }

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler { return s.engine }

// RegisterRoutes registers all dashboard routes.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", s.Page)
	r.GET("/charts/:kind", s.Chart)
	api := r.Group("/api")
	{
		api.GET("/preview", s.Preview)
		api.GET("/summary", s.Summary)
	}
	r.GET("/health", s.HealthCheck)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Header("X-Session-ID", s.session)
		c.Next()
		s.logger.Debug("request",
			zap.String("session", s.session),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// table prepares the dataset and writes a 503 when it is unavailable.
func (s *Server) table(c *gin.Context, asJSON bool) (*dataset.CleanedTable, bool) {
	t, err := s.src.Prepare(c.Request.Context())
	if err == nil {
		return t, true
	}
	s.logger.Error("prepare dataset", zap.String("session", s.session), zap.Error(err))
	status := http.StatusInternalServerError
	if errors.Is(err, dataset.ErrDataUnavailable) {
		status = http.StatusServiceUnavailable
	}
	if asJSON {
		c.JSON(status, gin.H{"error": err.Error()})
	} else {
		c.Data(status, "text/html; charset=utf-8", renderError(err))
	}
	return nil, false
}

// Page renders the full dashboard.
func (s *Server) Page(c *gin.Context) {
	t, ok := s.table(c, false)
	if !ok {
		return
	}
	rep := analysis.Summarize(t, analysis.Options{SampleRows: s.opt.PreviewRows, Bins: s.opt.Charts.Bins})
	body, err := renderPage(rep)
	if err != nil {
		s.logger.Error("render page", zap.Error(err))
		c.String(http.StatusInternalServerError, "render page: %v", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// Chart serves a rendered PNG, cached for the life of the session.
func (s *Server) Chart(c *gin.Context) {
	kind := charts.Kind(trimExt(c.Param("kind")))
	if kind != charts.KindHistogram && kind != charts.KindBoxPlot {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart"})
		return
	}
	t, ok := s.table(c, true)
	if !ok {
		return
	}
	img, err := s.chartImage(kind, t)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, charts.ErrNoData) {
			status = http.StatusNotFound
		}
		s.logger.Error("render chart", zap.String("chart", string(kind)), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

func (s *Server) chartImage(kind charts.Kind, t *dataset.CleanedTable) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.images[kind]; ok {
		return img, nil
	}
	p, err := charts.Build(kind, t, s.opt.Charts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := charts.Render(p, &buf, s.opt.Charts); err != nil {
		return nil, err
	}
	s.images[kind] = buf.Bytes()
	return s.images[kind], nil
}

// Preview returns the first rows of the table.
func (s *Server) Preview(c *gin.Context) {
	t, ok := s.table(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":    t.Head(s.opt.PreviewRows),
		"total":   t.Len(),
		"session": s.session,
	})
}

// Summary returns the descriptive statistics behind the charts.
func (s *Server) Summary(c *gin.Context) {
	t, ok := s.table(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis.Summarize(t, analysis.Options{SampleRows: s.opt.PreviewRows, Bins: s.opt.Charts.Bins}))
}

// HealthCheck reports liveness and whether the table has been built.
func (s *Server) HealthCheck(c *gin.Context) {
	ready := false
	if cp, ok := s.src.(interface {
		Cached() (*dataset.CleanedTable, bool)
	}); ok {
		_, ready = cp.Cached()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "session": s.session, "data_ready": ready})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("address", addr), zap.String("session", s.session))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func trimExt(name string) string { return strings.TrimSuffix(name, path.Ext(name)) }
