// Package web serves the JSON API the dashboard talks to. Each content kind
// gets one held list (a manager.Manager) shared by every request, loaded on
// first access and patched after each successful mutation.
package web

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/contentdesk/internal/content"
	"github.com/mesh-intelligence/contentdesk/internal/manager"
	"github.com/mesh-intelligence/contentdesk/internal/overview"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Options tunes the HTTP server.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP API over one content catalog.
type Server struct {
	app       *fiber.App
	log       *zap.Logger
	resources map[types.Kind]resource
	sources   []overview.Source
}

// New builds the fiber app and registers every route.
func New(catalog *content.Catalog, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "contentdesk",
			ReadTimeout:           opts.ReadTimeout,
			WriteTimeout:          opts.WriteTimeout,
			DisableStartupMessage: true,
		}),
		log: log,
		resources: map[types.Kind]resource{
			types.KindService:     newResource(catalog.Services, log),
			types.KindTeamMember:  newResource(catalog.TeamMembers, log),
			types.KindTestimonial: newResource(catalog.Testimonials, log, manager.WithSubject(manager.TestimonialSubject)),
			types.KindCaseStudy:   newResource(catalog.CaseStudies, log),
		},
		sources: overview.Sources(catalog),
	}

	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(RequestLogger(log.Sugar()))
	s.routes()
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests. A zero timeout waits indefinitely.
func (s *Server) Shutdown(timeout time.Duration) error {
	if timeout <= 0 {
		return s.app.Shutdown()
	}
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := s.app.Group("/api")
	api.Get("/kinds", s.kinds)
	api.Get("/overview", s.overview)
	api.Get("/:kind", s.withResource(resource.list))
	api.Post("/:kind/reload", s.withResource(resource.reload))
	api.Get("/:kind/:id", s.withResource(resource.get))
	api.Post("/:kind", s.withResource(resource.create))
	api.Patch("/:kind/:id", s.withResource(resource.update))
	api.Delete("/:kind/:id", s.withResource(resource.remove))
}

// withResource resolves the :kind parameter, accepting the aliases
// types.ParseKind knows.
func (s *Server) withResource(h func(resource, *fiber.Ctx) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := types.ParseKind(c.Params("kind"))
		if err != nil {
			return writeError(c, err)
		}
		return h(s.resources[kind], c)
	}
}

type kindInfo struct {
	Kind     types.Kind    `json:"kind"`
	Label    string        `json:"label"`
	Singular string        `json:"singular"`
	Plural   string        `json:"plural"`
	Fields   []types.Field `json:"fields"`
}

func (s *Server) kinds(c *fiber.Ctx) error {
	out := make([]kindInfo, 0, len(types.Kinds))
	for _, k := range types.Kinds {
		out = append(out, kindInfo{
			Kind:     k,
			Label:    k.Label(),
			Singular: k.Singular(),
			Plural:   k.Plural(),
			Fields:   types.SchemaFor(k).Fields,
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}

func (s *Server) overview(c *fiber.Ctx) error {
	ov, err := overview.Load(c.UserContext(), s.log, s.sources...)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(ov)
}
