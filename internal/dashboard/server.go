// Package dashboard serves the Accessboard web UI: the project list, project
// detail pages, and task creation/editing forms backed by the external test
// service and the project store.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/accessboard/accessboard/internal/projects"
	"github.com/accessboard/accessboard/internal/webservice"
)

// TaskService is the slice of the external test service the dashboard
// consumes. *webservice.Client implements it.
type TaskService interface {
	ListTasks(ctx context.Context, opts webservice.ListOpts) ([]webservice.Task, error)
	GetTask(ctx context.Context, id string) (*webservice.Task, error)
	CreateTask(ctx context.Context, spec webservice.TaskSpec) (*webservice.Task, error)
	EditTask(ctx context.Context, id string, patch webservice.TaskPatch) error
	DeleteTask(ctx context.Context, id string) error
}

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	// Store may be nil: the dashboard then runs without project grouping,
	// listing every task under a single Unassigned card.
	Store  *projects.Store
	Tasks  TaskService
	Port   int
	Logger *zap.Logger
	Out    io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is
// cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Tasks == nil {
		return fmt.Errorf("dashboard: task service is required")
	}
	if opts.Port <= 0 {
		opts.Port = 4000
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	router, err := newRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Accessboard running at http://localhost:%d\n", opts.Port)
	}
	opts.Logger.Info("dashboard listening",
		zap.Int("port", opts.Port),
		zap.Bool("projects_enabled", opts.Store != nil))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// newRouter builds the Gin engine with templates, assets and routes.
func newRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	registerRoutes(router, deps{
		store: opts.Store,
		tasks: opts.Tasks,
		log:   opts.Logger,
	})
	return router, nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
