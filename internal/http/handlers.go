package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nabungemas/internal/confirm"
	"nabungemas/internal/core"
	"nabungemas/internal/log"
	"nabungemas/internal/ports"
)

// writeError maps err onto a status code. Unexpected errors are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, confirm.ErrNotPending):
		ConflictError("Nothing is waiting for confirmation").Write(w)
	case errors.Is(err, ports.ErrNotFound):
		NotFoundError("Not found").Write(w)
	case isValidationError(err):
		ErrorResponse(http.StatusUnprocessableEntity, "Please check the entered values").Write(w)
	default:
		log.FromContext(r.Context()).LogError(r.Context(), "Request failed", err, op, nil)
		InternalServerError("Something went wrong").Write(w)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrEmptyCategory, core.ErrEmptyProduct, core.ErrEmptyTime, core.ErrInvalidTime,
		core.ErrInvalidPrice, core.ErrInvalidQuantity, core.ErrInvalidTarget, core.ErrValueTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := s.vm.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed",
			log.NewFields().WithComponent(log.ComponentStorage).WithError(err).ToSlice()...)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about.html", aboutPage{
		page:      page{Title: "About", Nav: "about"},
		AppName:   AppName,
		Statement: appStatement,
		Version:   "Version " + s.version,
		Copyright: appCopyright,
	})
}

// handleEvents streams a server-sent event whenever a list snapshot is
// published. The current snapshots are announced on connect.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Event stream unsupported", log.FieldError, err.Error())
		return
	}

	ctx := r.Context()
	savings := s.vm.ObserveSavings(ctx)
	txs := s.vm.ObserveTransactions(ctx)
	keepAlive := time.NewTicker(eventKeepAlive)
	defer keepAlive.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case <-s.closing:
			return
		case list, ok := <-savings:
			if !ok {
				return
			}
			err = writeEvent(w, "savings", len(list))
		case list, ok := <-txs:
			if !ok {
				return
			}
			err = writeEvent(w, "transactions", len(list))
		case <-keepAlive.C:
			_, err = fmt.Fprint(w, ": keep-alive\n\n")
		}
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			log.FromContext(ctx).DebugContext(ctx, "Event stream closed", log.FieldError, err.Error())
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, count int) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: {\"count\":%d}\n\n", name, count)
	return err
}
