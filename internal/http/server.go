package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"nabungemas/internal/cache"
	"nabungemas/internal/confirm"
	"nabungemas/internal/core"
	"nabungemas/internal/log"
	"nabungemas/internal/middleware/ratelimit"
	"nabungemas/internal/middleware/security"
	"nabungemas/internal/middleware/trace"
	"nabungemas/internal/ports"
	"nabungemas/internal/viewmodel"
	appweb "nabungemas/web"
)

const (
	AppName      = "Nabung Emas"
	appStatement = "Nabung Emas keeps track of your gold savings. Set a target for each goal, record every gold purchase and watch how close each goal is to its target."
	appCopyright = "© 2023 Nabung Emas"

	cacheSweepInterval = time.Minute
	eventKeepAlive     = 25 * time.Second
	readyTimeout       = 2 * time.Second
)

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	ConfirmTTL         time.Duration
	Version            string
	Logger             *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	vm        *viewmodel.ViewModel
	options   ports.OptionLister
	logger    *log.Logger

	savingConfirm      *confirm.Flow[core.Saving]
	transactionConfirm *confirm.Flow[core.Transaction]

	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	clientIP     *security.ClientIP

	version string

	closing      chan struct{}
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires every route.
func NewServer(opts Options, vm *viewmodel.ViewModel, options ports.OptionLister) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.ConfirmTTL <= 0 {
		opts.ConfirmTTL = confirm.DefaultTTL
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	s := &Server{
		templates:    t,
		vm:           vm,
		options:      options,
		logger:       opts.Logger.WithComponent(log.ComponentHTTP),
		cacheManager: cache.NewManager(opts.Logger.WithComponent(log.ComponentCache).Slog()),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:       trace.NewMiddleware(),
		clientIP:     security.NewClientIP(),
		version:      opts.Version,
		closing:      make(chan struct{}),
	}
	s.savingConfirm = confirm.New[core.Saving](vm.DeleteSaving, opts.ConfirmTTL, confirm.DefaultMaxRows)
	s.transactionConfirm = confirm.New[core.Transaction](vm.DeleteTransaction, opts.ConfirmTTL, confirm.DefaultMaxRows)
	s.cacheManager.Register(s.savingConfirm.Cache())
	s.cacheManager.Register(s.transactionConfirm.Cache())
	s.cacheManager.StartCleanup(cacheSweepInterval)

	mux := http.NewServeMux()
	limit := s.rateLimiter.Middleware(s.clientIP.Extract, s.handleRateLimited, http.MethodPost)
	mutation := func(h http.HandlerFunc) http.Handler { return limit(h) }

	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /about", s.handleAbout)

	mux.HandleFunc("GET /savings", s.handleSavings)
	mux.HandleFunc("GET /ui/savings", s.handleSavingList)
	mux.Handle("POST /savings", mutation(s.handleCreateSaving))
	mux.Handle("POST /savings/{category}/delete", mutation(s.handleRequestSavingDelete))
	mux.Handle("POST /savings/{category}/confirm", mutation(s.handleConfirmSavingDelete))

	mux.HandleFunc("GET /transactions", s.handleTransactions)
	mux.HandleFunc("GET /ui/transactions", s.handleTransactionList)
	mux.HandleFunc("GET /transactions/new", s.handleNewTransaction)
	// Field edits fire on every keystroke, so they are not rate limited.
	mux.HandleFunc("POST /ui/transaction-form", s.handleTransactionFormEdit)
	mux.Handle("POST /transactions", mutation(s.handleCreateTransaction))
	mux.Handle("POST /transactions/{id}/delete", mutation(s.handleRequestTransactionDelete))
	mux.Handle("POST /transactions/{id}/confirm", mutation(s.handleConfirmTransactionDelete))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Addr = opts.Addr
	s.Handler = chain(mux,
		s.tracer.Middleware,
		log.Middleware(s.logger),
		log.RequestIDMiddleware(trace.FromRequest),
		log.AccessLog(s.clientIP.Extract),
		headers.Middleware,
	)
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 15 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16
	s.Server.RegisterOnShutdown(func() { close(s.closing) })
	return s, nil
}

// chain wraps h so the first middleware runs first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Shutdown logs the request counters, stops the background sweepers and
// then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		limits := s.rateLimiter.GetMetrics()
		s.logger.Info("HTTP server stopping", log.NewFields().
			With("requests", s.tracer.GetMetrics().TotalRequests).
			With("rate_limited", limits.TotalHits).
			With("rate_limited_clients", limits.ClientCount).
			With(log.FieldOperation, log.OpShutdown).ToSlice()...)
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
		s.cacheManager.Wait()
	})
	return err
}

// render executes a template into a buffer so a failure can still produce a
// clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	s.respond(w, r, NewHTMXResponse().Status(status), name, data)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Template execution failed", err, log.OpRender,
			log.NewFields().WithComponent(log.ComponentTemplate).With("template", name))
		InternalServerError("Something went wrong").Write(w)
		return
	}
	b.BodyHTML(buf.Bytes()).Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.NewFields().WithComponent(log.ComponentRateLimit).WithClientIP(s.clientIP.Extract(r)).ToSlice()...)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.").Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/savings", http.StatusSeeOther)
}
