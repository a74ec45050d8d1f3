package rest

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pbinitiative/zendcr/internal/config"
	"github.com/pbinitiative/zendcr/internal/log"
	"github.com/pbinitiative/zendcr/internal/rest/middleware"
	"github.com/pbinitiative/zendcr/pkg/bpmn"
	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBpmnSize limits uploaded BPMN documents.
const maxBpmnSize = 10 << 20

// Engine is the part of bpmn.Engine the REST API serves.
type Engine interface {
	NestingThreshold() int
	LoadFromBytesWithThreshold(ctx context.Context, xmlData []byte, resourceName string, threshold int) (*runtime.GraphDefinition, error)
	FindGraphDefinition(ctx context.Context, key int64) (runtime.GraphDefinition, error)
	FindGraphDefinitionsById(ctx context.Context, bpmnProcessId string) ([]runtime.GraphDefinition, error)
	CreateSimulation(ctx context.Context, definitionKey int64) (*bpmn.SimulationState, error)
	ExecuteEvent(ctx context.Context, simulationKey int64, eventId string) (*bpmn.SimulationState, error)
	ResetSimulation(ctx context.Context, simulationKey int64) (*bpmn.SimulationState, error)
	SimulationState(ctx context.Context, simulationKey int64) (*bpmn.SimulationState, error)
}

type Server struct {
	engine Engine
	name   string
	addr   string
	server *http.Server
}

func NewServer(engine Engine, conf config.Config) *Server {
	r := chi.NewRouter()
	s := Server{
		engine: engine,
		name:   conf.Name,
		addr:   conf.Server.Addr,
		server: &http.Server{
			ReadHeaderTimeout: 3 * time.Second,
			Handler:           r,
			Addr:              conf.Server.Addr,
		},
	}
	r.Use(middleware.Cors())
	r.Use(middleware.Opentelemetry(conf))
	r.Use(middleware.StripEmptyQueryParams())

	r.Route(apiPrefix(conf.Server.Context), func(r chi.Router) {
		r.Route("/translations", func(r chi.Router) {
			r.Post("/", s.CreateTranslation)
			r.Get("/", s.GetTranslations)
			r.Get("/{key}", s.GetTranslation)
			r.Get("/{key}/dcr.xml", s.GetTranslationXml)
		})
		r.Route("/simulations", func(r chi.Router) {
			r.Post("/", s.CreateSimulation)
			r.Get("/{key}", s.GetSimulation)
			r.Post("/{key}/events/{eventId}/execute", s.ExecuteEvent)
			r.Post("/{key}/reset", s.ResetSimulation)
		})
	})
	// register system endpoints
	r.Route("/system", func(r chi.Router) {
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJson(w, http.StatusOK, map[string]string{
				"status":  "healthy",
				"service": s.name,
			})
		})
	})
	return &s
}

func apiPrefix(context string) string {
	return strings.TrimSuffix(context, "/") + "/v1"
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() net.Listener {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		log.Fatal("failed to listen: %v", err)
	}
	log.Info("ZenDcr REST server listening on %s", listener.Addr())
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("Error starting server: %s", err)
		}
	}()
	return listener
}

func (s *Server) Stop(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		log.Error("Error stopping server: %s", err)
	}
}

func writeJson(w http.ResponseWriter, status int, resp any) {
	body, err := json.Marshal(resp)
	if err != nil {
		log.Error("Server error: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
