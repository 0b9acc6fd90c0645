package httpx

import (
	"log/slog"
	"net/http"

	"github.com/slushhq/agent-ops/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs   *service.JobService
	Chat   *service.ChatService // Optional: chat routes 503 when absent
	APIKey string
	Logger *slog.Logger // Logger for request and panic logging (optional)
}

// NewRouter creates and configures the HTTP router. Every route except the
// health check sits behind the static bearer key.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jobHandlers := &JobHandlers{Svc: services.Jobs, Chat: services.Chat}

	api := http.NewServeMux()
	registerJobRoutes(api, jobHandlers)

	mux := http.NewServeMux()
	mux.Handle("/", RequireAPIKey(services.APIKey)(api))
	mux.Handle("GET /health", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /health", http.HandlerFunc(healthHandler))

	return Logging(logger)(Recover(logger)(mux))
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.HandleFunc("POST /jobs", h.CreateJob)
	mux.HandleFunc("GET /jobs", h.ListJobs)
	mux.HandleFunc("GET /jobs/stats", h.JobStats)
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)
	mux.HandleFunc("GET /jobs/{id}/output", h.GetJobOutput)
	mux.HandleFunc("POST /jobs/{id}/chat", h.ChatJob)
	mux.HandleFunc("GET /outputs/latest", h.LatestOutput)
}
