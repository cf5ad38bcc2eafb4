package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelbridge/internal/marshal"
	"modelbridge/pkg/types"
)

// api decodes numbers as json.Number so integer handles and int64 tensor data
// survive without a float64 round trip.
var api = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Dispatch(ctx context.Context, method string, args map[string]any) types.Reply
	ListModels() ([]types.ModelFile, error)
	Modules() []types.ModuleStatus
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if c := corsMiddleware(); c != nil {
		r.Use(c)
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}

	r.Post("/call", h.callEnvelope)
	r.Post("/call/{method}", h.callMethod)

	r.Route("/modules", func(r chi.Router) {
		r.Get("/", h.listModules)
		r.Post("/", h.loadModule)
		r.Post("/{handle}/forward", h.forwardModule)
		r.Delete("/{handle}", h.destroyModule)
	})

	r.Get("/models", h.listModels)

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("closed"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// callEnvelope godoc
// @Summary Call a bridge method
// @Description Runs load, forward or destroy with a loosely typed argument bag.
// @Tags bridge
// @Accept json
// @Produce json
// @Param request body types.CallRequest true "Method and arguments"
// @Success 200 {object} types.Reply
// @Failure 400 {object} types.Reply
// @Failure 404 {object} types.Reply
// @Failure 415 {object} types.ErrorResponse
// @Failure 422 {object} types.Reply
// @Failure 501 {object} types.Reply
// @Router /call [post]
func (h *handlers) callEnvelope(w http.ResponseWriter, r *http.Request) {
	var req types.CallRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Method) == "" {
		writeJSONError(w, http.StatusBadRequest, "method is required")
		return
	}
	h.call(w, r, req.Method, req.Arguments)
}

// callMethod godoc
// @Summary Call a bridge method by path
// @Tags bridge
// @Accept json
// @Produce json
// @Param method path string true "load, forward or destroy"
// @Param arguments body object true "Argument bag"
// @Success 200 {object} types.Reply
// @Failure 400 {object} types.Reply
// @Failure 501 {object} types.Reply
// @Router /call/{method} [post]
func (h *handlers) callMethod(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if !decodeBody(w, r, &args) {
		return
	}
	h.call(w, r, chi.URLParam(r, "method"), args)
}

// loadModule godoc
// @Summary Load a model file
// @Tags modules
// @Accept json
// @Produce json
// @Param request body object true "{\"filePath\": \"/models/net.onnx\"}"
// @Success 200 {object} types.Reply
// @Failure 400 {object} types.Reply
// @Failure 422 {object} types.Reply
// @Router /modules [post]
func (h *handlers) loadModule(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if !decodeBody(w, r, &args) {
		return
	}
	h.call(w, r, marshal.MethodLoad, args)
}

// forwardModule godoc
// @Summary Run a loaded module
// @Tags modules
// @Accept json
// @Produce json
// @Param handle path int true "Module handle"
// @Param request body object true "{\"inputs\": [...]}"
// @Success 200 {object} types.Reply
// @Failure 400 {object} types.Reply
// @Failure 404 {object} types.Reply
// @Failure 422 {object} types.Reply
// @Router /modules/{handle}/forward [post]
func (h *handlers) forwardModule(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if !decodeBody(w, r, &args) {
		return
	}
	if args == nil {
		args = map[string]any{}
	}
	delete(args, "moduleId")
	args["handle"] = handleParam(r)
	h.call(w, r, marshal.MethodForward, args)
}

// destroyModule godoc
// @Summary Destroy a module
// @Description Always succeeds for well-formed handles, including unknown ones.
// @Tags modules
// @Produce json
// @Param handle path int true "Module handle"
// @Success 200 {object} types.Reply
// @Failure 400 {object} types.Reply
// @Router /modules/{handle} [delete]
func (h *handlers) destroyModule(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, marshal.MethodDestroy, map[string]any{"handle": handleParam(r)})
}

// listModules godoc
// @Summary List live modules
// @Tags modules
// @Produce json
// @Success 200 {object} types.ModulesResponse
// @Router /modules [get]
func (h *handlers) listModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ModulesResponse{Modules: h.svc.Modules()})
}

// listModels godoc
// @Summary List model files in the models directory
// @Tags catalog
// @Produce json
// @Success 200 {object} types.ModelsResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /models [get]
func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.ListModels()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
}

func (h *handlers) call(w http.ResponseWriter, r *http.Request, method string, args map[string]any) {
	start := time.Now()
	ctx, cancel := callContext(r)
	defer cancel()
	reply := h.svc.Dispatch(ctx, method, args)
	status := replyStatus(reply)
	observeReply(method, reply)
	logCall(r, method, args, reply, status, start)
	writeJSON(w, status, reply)
}

// handleParam passes the path segment through as a number literal; the
// marshal layer rejects anything that is not an integer.
func handleParam(r *http.Request) any {
	return json.Number(chi.URLParam(r, "handle"))
}

// decodeBody enforces the JSON content type and body limit and decodes into v.
// An empty body leaves v untouched. On failure the response is written and
// false is returned.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := api.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := api.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = api.Marshal(types.ErrorResponse{Error: "failed to encode response", Code: status})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
