package servers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"custom-id-generator/internal/issuer"
	"custom-id-generator/internal/pb"
)

const (
	userHeader     = "X-User-ID"
	requestTimeout = time.Second * 3
)

type httpServer struct {
	Port     int
	Issuer   *issuer.Issuer
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	server   *http.Server
}

type httpController struct {
	issuer *issuer.Issuer
	logger *slog.Logger
}

func NewHttpServer(port int, iss *issuer.Issuer, gatherer prometheus.Gatherer, logger *slog.Logger) *httpServer {
	s := &httpServer{
		Port:     port,
		Issuer:   iss,
		Gatherer: gatherer,
		Logger:   logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *httpServer) Serve() error {
	s.Logger.Info("http server listening", "port", s.Port)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return fmt.Errorf("failed to start http server: %v", err)
}

func (s *httpServer) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %v", err)
	}

	return nil
}

func (s *httpServer) Handler() http.Handler {
	c := &httpController{
		issuer: s.Issuer,
		logger: s.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /inventories/{id}/custom-ids", c.issue)
	mux.HandleFunc("DELETE /inventories/{id}", c.deleteInventory)
	mux.HandleFunc("POST /custom-ids/preview", c.preview)
	mux.HandleFunc("GET /get-unique-id", c.getUniqueId)
	mux.HandleFunc("GET /healthz", func(res http.ResponseWriter, _ *http.Request) {
		res.WriteHeader(http.StatusOK)
		res.Write([]byte("ok"))
	})
	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

type issueResponse struct {
	ID       string `json:"id"`
	Sequence *int64 `json:"sequence,omitempty"`
	Attempts int    `json:"attempts"`
}

type previewRequest struct {
	Template []struct {
		Kind  string `json:"kind"`
		Type  string `json:"type"`
		Order int    `json:"order"`
		Value string `json:"value"`
		Width int    `json:"width"`
	} `json:"template"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *httpController) issue(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	id, err := c.issuer.Issue(ctx, req.Header.Get(userHeader), req.PathValue("id"))
	if err != nil {
		c.writeError(res, err)
		return
	}

	c.writeJSON(res, http.StatusCreated, issueResponse{ID: id.Value, Sequence: id.Sequence, Attempts: id.Attempts})
}

// getUniqueId is the plain text variant used by load tests:
// GET /get-unique-id?inventory_id=inv1 with the caller in X-User-ID.
func (c *httpController) getUniqueId(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	newId, err := c.issuer.Issue(ctx, req.Header.Get(userHeader), req.URL.Query().Get("inventory_id"))
	if err != nil {
		res.WriteHeader(httpStatus(err))
		res.Write([]byte(fmt.Sprintf("error while generating new unique id: %v", err)))
		return
	}

	res.WriteHeader(http.StatusOK)
	res.Write([]byte(newId.Value))
}

func (c *httpController) deleteInventory(res http.ResponseWriter, req *http.Request) {
	if err := c.issuer.DeleteInventory(req.Context(), req.Header.Get(userHeader), req.PathValue("id")); err != nil {
		c.writeError(res, err)
		return
	}

	res.WriteHeader(http.StatusNoContent)
}

func (c *httpController) preview(res http.ResponseWriter, req *http.Request) {
	var body previewRequest
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, 1<<20)).Decode(&body); err != nil {
		c.writeError(res, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	elements := make([]pb.TemplateElement, 0, len(body.Template))
	for _, el := range body.Template {
		kind := el.Kind
		if kind == "" {
			kind = el.Type
		}
		elements = append(elements, pb.TemplateElement{Kind: kind, Order: el.Order, Value: el.Value, Width: el.Width})
	}

	tmpl, err := templateFromWire(elements)
	if err != nil {
		c.writeError(res, err)
		return
	}

	id, err := c.issuer.Preview(tmpl)
	if err != nil {
		c.writeError(res, err)
		return
	}

	c.writeJSON(res, http.StatusOK, map[string]string{"id": id})
}

func (c *httpController) writeError(res http.ResponseWriter, err error) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		c.logger.Error("request failed", "error", err)
	}
	c.writeJSON(res, code, errorResponse{Error: err.Error()})
}

func (c *httpController) writeJSON(res http.ResponseWriter, code int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(code)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		c.logger.Warn("failed to write response", "error", err)
	}
}
