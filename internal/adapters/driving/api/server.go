// Package api serves the store assistant over HTTP with fiber.
package api

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/custodia-labs/aisle/internal/core/ports/driving"
)

const appName = "aisle"

// Services are the driving ports the API exposes.
type Services struct {
	Catalog   driving.CatalogService
	Assistant driving.AssistantService
	Routes    driving.RouteService
}

// Options configures the HTTP server.
type Options struct {
	AllowedOrigins []string
	BodyLimit      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// SearchLimit and SearchMinScore are the /search defaults.
	SearchLimit    int
	SearchMinScore float64
}

// Server is the REST API.
type Server struct {
	app  *fiber.App
	svc  Services
	opts Options
	log  *zap.Logger
}

// NewServer builds the fiber app and registers every route.
func NewServer(svc Services, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 5
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{svc: svc, opts: opts, log: log}
	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		ServerHeader:          appName,
		DisableStartupMessage: true,
		BodyLimit:             opts.BodyLimit,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          errorHandler(log),
	})

	s.app.Use(recover.New())
	s.app.Use(requestID())
	s.app.Use(accessLog(log))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(opts.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, " + requestIDHeader,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)
	s.app.Post("/query", s.query)
	s.app.Get("/search", s.search)
	s.app.Post("/route", s.route)

	s.app.Get("/products", s.listProducts)
	s.app.Post("/products", s.createProduct)
	s.app.Get("/products/:id", s.getProduct)
	s.app.Put("/products/:id", s.updateProduct)
	s.app.Delete("/products/:id", s.deleteProduct)

	s.app.Get("/aisles", s.listAisles)
	s.app.Post("/aisles", s.createAisle)
	s.app.Put("/aisles/:id", s.updateAisle)
	s.app.Delete("/aisles/:id", s.deleteAisle)

	s.app.Get("/layout", s.getLayout)
	s.app.Put("/layout", s.updateLayout)
	s.app.Get("/stats", s.stats)
	s.app.Post("/reload", s.reload)

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s.app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})
}

// App returns the fiber app. Used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on addr until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("HTTP server shutting down")
		err := s.app.ShutdownWithTimeout(5 * time.Second)
		ln.Close()
		<-errCh
		return err
	}
}
