package api

import (
    "context"
    "errors"
    "fmt"
    "github.com/aleph-zero/flutterstack/service/registry"
    "github.com/go-chi/chi/v5"
    "github.com/go-chi/render"
    "net/http"
    "strconv"
)

type contextKey string

const stackKey contextKey = "stack"

/* *** Stack API *** */

type StackHandler struct {
    service registry.Service
}

func NewStackHandler(svc registry.Service) StackHandler {
    return StackHandler{service: svc}
}

// Routes mounts every stack endpoint under a router meant to be served at /stacks.
func (h *StackHandler) Routes() chi.Router {
    r := chi.NewRouter()
    r.Get("/", h.List)
    r.Put("/", h.Create)
    r.Route("/{stack}", func(r chi.Router) {
        r.Use(StackContext)
        r.Get("/", h.Get)
        r.Delete("/", h.Delete)
        r.Post("/push", h.Push)
        r.Post("/pop", h.Pop)
        r.Post("/resize", h.Resize)
        r.Post("/assign", h.Assign)
        r.Post("/clone", h.Clone)
        r.Post("/reverse", h.Reverse)
        r.Post("/swap/{other}", h.Swap)
        r.Get("/compare/{other}", h.Compare)
    })
    return r
}

func (h *StackHandler) List(w http.ResponseWriter, r *http.Request) {
    models := h.service.List(r.Context())
    list := make([]render.Renderer, 0, len(models))
    for _, m := range models {
        list = append(list, &StackResponse{m})
    }
    render.Status(r, http.StatusOK)
    render.RenderList(w, r, list)
}

func (h *StackHandler) Create(w http.ResponseWriter, r *http.Request) {
    values, err := readValues(r)
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    model, err := h.service.Create(r.Context(), values)
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }

    render.Status(r, http.StatusCreated)
    render.Render(w, r, &StackResponse{model})
}

func (h *StackHandler) Get(w http.ResponseWriter, r *http.Request) {
    model, err := h.service.Get(r.Context(), stackFromContext(r.Context()))
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    render.Render(w, r, &StackResponse{model})
}

func (h *StackHandler) Delete(w http.ResponseWriter, r *http.Request) {
    if err := h.service.Delete(r.Context(), stackFromContext(r.Context())); err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

func (h *StackHandler) Push(w http.ResponseWriter, r *http.Request) {
    values, err := readValues(r)
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    model, err := h.service.Push(r.Context(), stackFromContext(r.Context()), values...)
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    render.Render(w, r, &StackResponse{model})
}

func (h *StackHandler) Pop(w http.ResponseWriter, r *http.Request) {
    v, err := h.service.Pop(r.Context(), stackFromContext(r.Context()))
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    render.Render(w, r, &PopResponse{Value: v})
}

func (h *StackHandler) Resize(w http.ResponseWriter, r *http.Request) {
    n, err := queryInt(r, "n")
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    model, err := h.service.Resize(r.Context(), stackFromContext(r.Context()), n)
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    render.Render(w, r, &StackResponse{model})
}

func (h *StackHandler) Assign(w http.ResponseWriter, r *http.Request) {
    n, err := queryInt(r, "n")
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }
    value, err := queryInt(r, "value")
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    model, err := h.service.Assign(r.Context(), stackFromContext(r.Context()), n, value)
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    render.Render(w, r, &StackResponse{model})
}

func (h *StackHandler) Clone(w http.ResponseWriter, r *http.Request) {
    model, err := h.service.Clone(r.Context(), stackFromContext(r.Context()))
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    render.Status(r, http.StatusCreated)
    render.Render(w, r, &StackResponse{model})
}

func (h *StackHandler) Reverse(w http.ResponseWriter, r *http.Request) {
    model, err := h.service.Reverse(r.Context(), stackFromContext(r.Context()))
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    render.Status(r, http.StatusCreated)
    render.Render(w, r, &StackResponse{model})
}

func (h *StackHandler) Swap(w http.ResponseWriter, r *http.Request) {
    if err := h.service.Swap(r.Context(), stackFromContext(r.Context()), chi.URLParam(r, "other")); err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

func (h *StackHandler) Compare(w http.ResponseWriter, r *http.Request) {
    c, err := h.service.Compare(r.Context(), stackFromContext(r.Context()), chi.URLParam(r, "other"))
    if err != nil {
        render.Render(w, r, ErrRegistry(err))
        return
    }
    render.Render(w, r, &ComparisonResponse{c})
}

func StackContext(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        var id string
        if id = chi.URLParam(r, "stack"); id == "" {
            render.Render(w, r, ErrInvalidRequest(errors.New("missing stack id")))
            return
        }
        ctx := context.WithValue(r.Context(), stackKey, id)
        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

func stackFromContext(ctx context.Context) string {
    id, _ := ctx.Value(stackKey).(string)
    return id
}

func readValues(r *http.Request) ([]int, error) {
    defer r.Body.Close()

    values := make([]int, 0)
    err := ProcessJsonStream(r.Body, func(v int) error {
        values = append(values, v)
        return nil
    })
    return values, err
}

func queryInt(r *http.Request, name string) (int, error) {
    raw := r.URL.Query().Get(name)
    if raw == "" {
        return 0, fmt.Errorf("missing query parameter %q", name)
    }
    v, err := strconv.Atoi(raw)
    if err != nil {
        return 0, fmt.Errorf("invalid query parameter %q: %w", name, err)
    }
    return v, nil
}

/* *** Responses *** */

type StackResponse struct {
    *registry.Model
}

func (s *StackResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type PopResponse struct {
    Value int `json:"value"`
}

func (p *PopResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type ComparisonResponse struct {
    *registry.Comparison
}

func (c *ComparisonResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}
