// Package api exposes scheduling, listing and cancellation over a local
// HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"gitdelayed/internal/daemon"
	"gitdelayed/internal/domain"
	"gitdelayed/internal/ports"
	"gitdelayed/internal/usecase"
)

type scheduleReq struct {
	RepositoryPath string               `json:"repository_path"`
	Type           domain.OperationType `json:"operation_type"`
	Message        string               `json:"commit_message"`
	When           string               `json:"when"`
}

type daemonResp struct {
	Running bool `json:"running"`
	PID     int  `json:"pid,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
}

// DaemonStatus reports on the background process.
type DaemonStatus interface {
	Status() (daemon.Status, error)
}

type Server struct {
	router *chi.Mux
	store  ports.Store
	enq    usecase.Enqueuer
	cancel usecase.Canceller
	daemon DaemonStatus
}

func NewServer(store ports.Store, git ports.Git, d DaemonStatus) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  store,
		enq:    usecase.Enqueuer{Store: store, Git: git},
		cancel: usecase.Canceller{Store: store},
		daemon: d,
	}

	s.router.Route("/operations", func(r chi.Router) {
		r.Get("/", s.listOperations)
		r.With(middleware.AllowContentType("application/json")).Post("/", s.scheduleOperation)
		r.Get("/{id}", s.getOperation)
		r.Delete("/{id}", s.cancelOperation)
	})
	s.router.Get("/logs", s.listLogs)
	s.router.Get("/daemon", s.daemonStatus)
	return s
}

// Handler is the router wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return chainMiddleware(
		s.router,
		requestIDHandler,
		realIPHandler,
		loggerHandler(nil),
		recoverHandler,
		localOriginHandler,
	)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Msgf("api serving on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("api is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("api stopped")
	return nil
}

func (s *Server) listOperations(w http.ResponseWriter, r *http.Request) {
	ops, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ops)
}

func (s *Server) scheduleOperation(w http.ResponseWriter, r *http.Request) {
	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.RepositoryPath == "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "repository_path is required"})
		return
	}

	op, err := s.enq.Schedule(r.Context(), usecase.Request{
		Dir:     req.RepositoryPath,
		Type:    req.Type,
		Message: req.Message,
		When:    req.When,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, op)
}

func (s *Server) getOperation(w http.ResponseWriter, r *http.Request) {
	op, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

func (s *Server) cancelOperation(w http.ResponseWriter, r *http.Request) {
	op, err := s.cancel.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.LoadLogs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) daemonStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.daemon.Status()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, daemonResp{Running: st.Running, PID: st.PID})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrOperationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTimeSpec), domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResp{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
