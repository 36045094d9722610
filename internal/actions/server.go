package actions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/alphaomegateam/taiga-bridge/internal/metrics"
	"github.com/alphaomegateam/taiga-bridge/internal/requestid"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// ServerConfig holds configuration for the bridge HTTP server.
type ServerConfig struct {
	ListenAddr   string
	ActionAPIKey string
}

// Server is the bridge's Fiber application: action routes, health and
// metrics endpoints, and the mounted MCP transport.
type Server struct {
	app     *fiber.App
	factory taiga.Factory
	metrics *metrics.Metrics
	logger  zerolog.Logger
	config  ServerConfig
}

// NewServer creates and configures the bridge HTTP server. mcpHandler is
// mounted under /mcp; pass nil to run the action surface alone.
func NewServer(
	cfg ServerConfig,
	factory taiga.Factory,
	m *metrics.Metrics,
	mcpHandler http.Handler,
	logger zerolog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadBufferSize:        8192,
		WriteBufferSize:       8192,
	})

	s := &Server{
		app:     app,
		factory: factory,
		metrics: m,
		logger:  logger.With().Str("component", "actions_server").Logger(),
		config:  cfg,
	}

	s.setupMiddleware()
	s.setupRoutes(mcpHandler)

	return s
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID middleware
	s.app.Use(func(c *fiber.Ctx) error {
		ctx, reqID := requestid.New(c.UserContext())
		c.SetUserContext(ctx)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	})

	// Audit middleware (log every request)
	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		// healthz and metrics polling would drown the log
		if path == "/healthz" || path == "/metrics" {
			return c.Next()
		}

		s.logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Str("ip", c.IP()).
			Str("request_id", requestid.FromContext(c.UserContext())).
			Msg("bridge request")

		return c.Next()
	})
}

func (s *Server) setupRoutes(mcpHandler http.Handler) {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "taiga-bridge",
			"mcp":     "/mcp",
			"actions": "/actions",
		})
	})
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	if mcpHandler != nil {
		s.app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
		s.app.All("/mcp/*", adaptor.HTTPHandler(mcpHandler))
	}

	g := s.app.Group("/actions", APIKeyMiddleware(s.config.ActionAPIKey))

	g.Get("/list_projects", s.action("list_projects", s.listProjects))
	g.Get("/get_project", s.action("get_project", s.getProject))
	g.Get("/get_project_by_slug", s.action("get_project_by_slug", s.getProjectBySlug))
	g.Get("/list_epics", s.action("list_epics", s.listEpics))
	g.Get("/list_stories", s.action("list_stories", s.listStories))
	g.Get("/statuses", s.action("statuses", s.listStatuses))

	g.Post("/create_story", s.action("create_story", s.createStory))
	g.Post("/add_story_to_epic", s.action("add_story_to_epic", s.addStoryToEpic))
	g.Post("/update_story", s.action("update_story", s.updateStory))
	g.Post("/delete_story", s.action("delete_story", s.deleteStory))
	g.Post("/create_epic", s.action("create_epic", s.createEpic))
	g.Post("/update_epic", s.action("update_epic", s.updateEpic))
	g.Post("/delete_epic", s.action("delete_epic", s.deleteEpic))
	g.Post("/create_task", s.action("create_task", s.createTask))
	g.Post("/update_task", s.action("update_task", s.updateTask))
	g.Post("/delete_task", s.action("delete_task", s.deleteTask))
	g.Post("/create_issue", s.action("create_issue", s.createIssue))
	g.Post("/update_issue", s.action("update_issue", s.updateIssue))
	g.Post("/delete_issue", s.action("delete_issue", s.deleteIssue))
}

// action wraps an action handler with metrics and error mapping.
func (s *Server) action(name string, fn func(c *fiber.Ctx) (any, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		result, err := fn(c)

		if s.metrics != nil {
			status := fiber.StatusOK
			if err != nil {
				status = errorStatus(err)
			}
			s.metrics.RecordAction(name, fmt.Sprintf("%d", status))
			s.metrics.ObserveActionDuration(name, time.Since(start).Seconds())
		}

		if err != nil {
			return writeError(c, s.logger, err)
		}
		return c.JSON(result)
	}
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8000"
	}
	s.logger.Info().Str("addr", addr).Msg("bridge server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("bridge server shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}
