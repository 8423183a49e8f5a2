// Package rpc serves task state to editor hosts over HTTP and provides the
// matching client.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/amonks/taskprompt/reminder"
	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/task"
	"github.com/amonks/taskprompt/todo"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// maxRequestBytes bounds request bodies.
const maxRequestBytes = 4 << 20

// ServerOptions configures an RPC server.
type ServerOptions struct {
	Manager *task.Manager
	Logger  zerolog.Logger
}

// Server handles task RPCs.
type Server struct {
	manager *task.Manager
	logger  zerolog.Logger
}

// NewServer creates an RPC server.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Manager == nil {
		return nil, fmt.Errorf("task manager is required")
	}
	return &Server{manager: opts.Manager, logger: opts.Logger}, nil
}

// Handler returns the HTTP handler for task RPCs.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/todos/update", s.handleTodosUpdate).Methods(http.MethodPost)
	router.HandleFunc("/todos/show", s.handleTodosShow).Methods(http.MethodPost)
	router.HandleFunc("/tasks/input", s.handleTaskInput).Methods(http.MethodPost)
	router.HandleFunc("/sections", s.handleSections).Methods(http.MethodPost)
	router.HandleFunc("/reminder/extract", s.handleReminderExtract).Methods(http.MethodPost)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	})
	router.Use(s.logRequests)
	return s.recoverHandler(router)
}

// Serve listens on addr until interrupted.
func (s *Server) Serve(addr string) error {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-interrupts:
			s.logger.Info().Msg("interrupt received, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()
	return s.ServeContext(ctx, addr)
}

// ServeContext listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) ServeContext(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listenErrs := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("state", s.manager.StatePath()).Msg("listening")
		listenErrs <- server.ListenAndServe()
	}()

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleTodosUpdate(w http.ResponseWriter, r *http.Request) {
	var payload todosUpdateRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	result, err := s.manager.UpdateTodos(payload.TaskID, payload.Todos, payload.Reason)
	if err != nil {
		s.writeError(w, r, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, UpdateResponse{
		TaskID:   result.TaskID,
		Revision: result.Revision,
		Previous: result.Previous,
		List:     result.Summary,
	})
}

func (s *Server) handleTodosShow(w http.ResponseWriter, r *http.Request) {
	var payload taskRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	stored, err := s.manager.Task(payload.TaskID)
	if err != nil {
		s.writeError(w, r, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ShowResponse{
		TaskID:   stored.ID,
		Revision: stored.Revision,
		Reason:   stored.Reason,
		List:     stored.Summary(),
	})
}

func (s *Server) handleTaskInput(w http.ResponseWriter, r *http.Request) {
	var payload taskInputRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	stored, err := s.manager.SetInput(payload.TaskID, payload.Input)
	if err != nil {
		s.writeError(w, r, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, InputResponse{TaskID: stored.ID, Reminder: stored.Reminder()})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	var payload taskRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sections, err := s.manager.Sections(payload.TaskID)
	if err != nil {
		s.writeError(w, r, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (s *Server) handleReminderExtract(w http.ResponseWriter, r *http.Request) {
	var payload reminderExtractRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	text := reminder.Extract(payload.Text)
	writeJSON(w, http.StatusOK, ReminderResponse{
		Reminder: text,
		Found:    reminder.Has(payload.Text),
		Section:  section.Reminder(text),
	})
}

func errorStatus(err error) int {
	var validationErr *todo.ValidationError
	switch {
	case errors.As(err, &validationErr), errors.Is(err, task.ErrEmptyTaskID):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseTracker{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", recovered).
					Bytes("stack", debug.Stack()).
					Msg("panic handling request")
				if writer.wroteHeader {
					return
				}
				writeJSON(writer, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		writer := &responseTracker{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(writer, r)

		event := s.logger.Debug()
		if writer.status >= 500 {
			event = s.logger.Error()
		} else if writer.status >= 400 {
			event = s.logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", writer.status).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
	status      int
}

func (w *responseTracker) WriteHeader(status int) {
	w.wroteHeader = true
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(data)
}
