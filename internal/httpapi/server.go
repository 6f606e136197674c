package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lmsbridge/internal/lmclient"
	"lmsbridge/pkg/types"
)

// ModelService lists and manages models.
type ModelService interface {
	List(ctx context.Context) ([]types.Model, error)
	Get(ctx context.Context, id string) (types.Model, error)
	Load(ctx context.Context, id string) error
	Unload(ctx context.Context, id string) error
}

// ConfigService reads and patches the eviction configuration.
type ConfigService interface {
	Get(ctx context.Context) (types.ServerConfig, error)
	Update(ctx context.Context, patch types.ServerConfigPatch) (types.ServerConfig, error)
}

// StatusService reports the runtime snapshot.
type StatusService interface {
	Get(ctx context.Context) (types.ServerStatus, error)
}

// TrainingService lists fine-tuning jobs.
type TrainingService interface {
	List(ctx context.Context) ([]types.TrainingJob, error)
}

// Services defines what the HTTP API layer needs. Events is optional; without
// it /events is not mounted.
type Services struct {
	Models   ModelService
	Config   ConfigService
	Status   StatusService
	Training TrainingService
	Events   *EventHub
}

func NewMux(svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if mw := corsMiddleware(); mw != nil {
		r.Use(mw)
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Use(inflight)

		r.Get("/models", h.listModels)
		r.Get("/models/{id}", h.getModel)
		r.Post("/models/{id}/load", h.loadModel)
		r.Post("/models/{id}/unload", h.unloadModel)
		r.Get("/config", h.getConfig)
		r.Patch("/config", h.patchConfig)
		r.Get("/status", h.getStatus)
		r.Get("/training/jobs", h.listTrainingJobs)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if svc.Events != nil {
		r.Get("/events", svc.Events.ServeHTTP)
	}

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Services
}

// writeJSON encodes v with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Debug().Err(err).Msg("encode response")
	}
}

// fail writes err unless the client already went away.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		return
	}
	if serverBaseCtx.Err() != nil {
		writeJSONError(w, http.StatusServiceUnavailable, string(lmclient.KindInternal), "server shutting down")
		return
	}
	writeError(w, err)
}

// listModels godoc
// @Summary      List models
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /models [get]
func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r)
	defer cancel()
	models, err := h.svc.Models.List(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, types.ModelsResponse{Models: models})
}

// getModel godoc
// @Summary      Get one model
// @Tags         models
// @Produce      json
// @Param        id   path      string  true  "Model id"
// @Success      200  {object}  types.Model
// @Failure      404  {object}  types.ErrorResponse
// @Router       /models/{id} [get]
func (h *handlers) getModel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r)
	defer cancel()
	m, err := h.svc.Models.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, m)
}

// loadModel godoc
// @Summary      Load a model into memory
// @Tags         models
// @Produce      json
// @Param        id   path      string  true  "Model id"
// @Success      200  {object}  types.ActionResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /models/{id}/load [post]
func (h *handlers) loadModel(w http.ResponseWriter, r *http.Request) {
	h.modelAction(w, r, "load", h.svc.Models.Load)
}

// unloadModel godoc
// @Summary      Unload a model from memory
// @Tags         models
// @Produce      json
// @Param        id   path      string  true  "Model id"
// @Success      200  {object}  types.ActionResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /models/{id}/unload [post]
func (h *handlers) unloadModel(w http.ResponseWriter, r *http.Request) {
	h.modelAction(w, r, "unload", h.svc.Models.Unload)
}

func (h *handlers) modelAction(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, string) error) {
	ctx, cancel := callContext(r)
	defer cancel()
	id := chi.URLParam(r, "id")
	if err := fn(ctx, id); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, types.ActionResponse{ModelID: id, Action: action, OK: true})
}

// getConfig godoc
// @Summary      Get eviction configuration
// @Tags         config
// @Produce      json
// @Success      200  {object}  types.ServerConfig
// @Failure      503  {object}  types.ErrorResponse
// @Router       /config [get]
func (h *handlers) getConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r)
	defer cancel()
	cfg, err := h.svc.Config.Get(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, cfg)
}

// patchConfig godoc
// @Summary      Patch eviction configuration
// @Description  Only fields present in the body are changed.
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        patch  body      types.ServerConfigPatch  true  "Partial configuration"
// @Success      200    {object}  types.ServerConfig
// @Failure      400    {object}  types.ErrorResponse
// @Failure      413    {object}  types.ErrorResponse
// @Failure      415    {object}  types.ErrorResponse
// @Router       /config [patch]
func (h *handlers) patchConfig(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, string(lmclient.KindValidation), "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var patch types.ServerConfigPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSONError(w, http.StatusRequestEntityTooLarge, string(lmclient.KindValidation), "request body too large")
		case errors.Is(err, io.EOF):
			writeJSONError(w, http.StatusBadRequest, string(lmclient.KindValidation), "empty body")
		default:
			writeJSONError(w, http.StatusBadRequest, string(lmclient.KindValidation), "invalid JSON body")
		}
		return
	}
	ctx, cancel := callContext(r)
	defer cancel()
	cfg, err := h.svc.Config.Update(ctx, patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, cfg)
}

// getStatus godoc
// @Summary      Server runtime status
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.ServerStatus
// @Failure      503  {object}  types.ErrorResponse
// @Router       /status [get]
func (h *handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r)
	defer cancel()
	st, err := h.svc.Status.Get(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, st)
}

// listTrainingJobs godoc
// @Summary      List fine-tuning jobs
// @Tags         training
// @Produce      json
// @Success      200  {object}  types.TrainingJobsResponse
// @Failure      502  {object}  types.ErrorResponse
// @Router       /training/jobs [get]
func (h *handlers) listTrainingJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r)
	defer cancel()
	jobs, err := h.svc.Training.List(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, types.TrainingJobsResponse{Jobs: jobs})
}
