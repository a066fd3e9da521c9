package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/socialauth"
)

const callbackPath = "/callback"

// Loopback server limits. Only a single browser redirect is expected.
const (
	callbackReadHeaderTimeout = 5 * time.Second
	callbackReadTimeout       = 10 * time.Second
	callbackWriteTimeout      = 10 * time.Second
	callbackMaxHeaderBytes    = 16 << 10
	callbackShutdownTimeout   = 5 * time.Second
)

// callbackHandler receives redirects; *socialauth.Coordinator satisfies it.
type callbackHandler interface {
	HandleCallback(cb socialauth.Callback) bool
}

// newCallbackRouter forwards provider redirects to h.
func newCallbackRouter(h callbackHandler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !h.HandleCallback(socialauth.Callback{URL: req.URL}) {
			log.WarnContext(req.Context(), "authctl: redirect not claimed by any provider")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, "No sign-in is waiting for this redirect.\n")
			return
		}
		_, _ = io.WriteString(w, "Authorization received. You can close this window and return to the terminal.\n")
	})
	return r
}

// callbackServer is a loopback HTTP server that lives for one sign-in.
type callbackServer struct {
	server *http.Server
	ln     net.Listener
	log    *slog.Logger
	errCh  chan error
}

// startCallbackServer listens on addr and serves h in the background.
func startCallbackServer(addr string, h http.Handler, log *slog.Logger) (*callbackServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &callbackServer{
		server: &http.Server{
			Handler:           h,
			ReadTimeout:       callbackReadTimeout,
			WriteTimeout:      callbackWriteTimeout,
			ReadHeaderTimeout: callbackReadHeaderTimeout,
			MaxHeaderBytes:    callbackMaxHeaderBytes,
		},
		ln:    ln,
		log:   log,
		errCh: make(chan error, 1),
	}

	go func() {
		log.Debug("authctl: callback server listening", slog.String("address", ln.Addr().String()))
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
		close(s.errCh)
	}()

	return s, nil
}

// Addr returns the address the server is listening on.
func (s *callbackServer) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server and reports any serve error.
func (s *callbackServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), callbackShutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := <-s.errCh; err != nil {
		errs = append(errs, err)
	}
	s.log.Debug("authctl: callback server stopped")
	return errors.Join(errs...)
}
