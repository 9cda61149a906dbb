package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nyayalaya/casefile/internal/api/handlers"
	"github.com/nyayalaya/casefile/internal/api/middleware"
	"github.com/nyayalaya/casefile/internal/audit"
	"github.com/nyayalaya/casefile/internal/auth"
	"github.com/nyayalaya/casefile/internal/cache"
	"github.com/nyayalaya/casefile/internal/cases"
	"github.com/nyayalaya/casefile/internal/config"
	"github.com/nyayalaya/casefile/internal/document"
	"github.com/nyayalaya/casefile/internal/extraction"
	"github.com/nyayalaya/casefile/internal/ocr"
	"github.com/nyayalaya/casefile/internal/queue"
	"github.com/nyayalaya/casefile/internal/storage"
	"github.com/nyayalaya/casefile/internal/tenant"
)

type Router struct {
	mux    *chi.Mux
	db     *pgxpool.Pool
	redis  *redis.Client
	cfg    *config.Config
	ts     *tenant.Service
	jwt    *auth.JWTMiddleware
	worker *auth.WorkerAuth
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	ts := tenant.NewService(db, cache.NewCache(rdb))
	return &Router{
		mux:    chi.NewRouter(),
		db:     db,
		redis:  rdb,
		cfg:    cfg,
		ts:     ts,
		jwt:    auth.NewJWTMiddleware(cfg.Auth.JWTSecret, ts),
		worker: auth.NewWorkerAuth(cfg.OCR.WorkerToken),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	metrics := middleware.NewMetrics()
	r.Use(metrics.Instrument)

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health and metrics endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Initialize services
	store := storage.NewSupabaseStorage(rt.cfg.Storage.SupabaseURL, rt.cfg.Storage.SupabaseKey)
	caseSvc := cases.NewService(rt.db, store, rt.cfg.Storage.Bucket)
	queueClient := queue.NewClient(rt.cfg.Redis)
	ocrSvc := ocr.NewService(rt.db, caseSvc, queueClient, rt.cfg.OCR.Engine)
	docSvc := document.NewService(rt.db, store, rt.cfg.Storage.Bucket, caseSvc, ocrSvc)
	extractSvc := extraction.NewService(rt.db, caseSvc)
	auditSvc := audit.NewService(rt.db)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth: try the worker token first, then JWT
		r.Use(rt.worker.Authenticate)
		r.Use(rt.jwt.Authenticate)

		// User routes
		userH := handlers.NewUserHandler(rt.ts, auditSvc)
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userH.Create)
			r.Get("/me", userH.Me)
		})

		// Case routes
		caseH := handlers.NewCaseHandler(caseSvc, docSvc, auditSvc)
		r.Route("/cases", func(r chi.Router) {
			r.Post("/", caseH.Create)
			r.Get("/", caseH.List)
			r.Get("/{id}", caseH.Get)
			r.Patch("/{id}", caseH.Update)
			r.Delete("/{id}", caseH.Delete)
			r.Get("/{caseID}/documents", caseH.Documents)
		})

		// Document routes
		docH := handlers.NewDocumentHandler(docSvc, extractSvc, auditSvc)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upload)
			r.Get("/{id}", docH.Get)
			r.Patch("/{id}", docH.Update)
			r.Delete("/{id}", docH.Delete)
			r.Get("/{id}/text", docH.Text)
			r.Post("/{id}/requeue-ocr", docH.RequeueOCR)
			r.Post("/{id}/ocr-result", docH.OCRResult)
		})

		// OCR job routes
		jobH := handlers.NewOCRJobHandler(ocrSvc, auditSvc)
		r.Route("/ocr-jobs", func(r chi.Router) {
			r.Post("/", jobH.Queue)
			r.Get("/", jobH.List)
			r.Get("/{id}", jobH.Get)
			r.Post("/{id}/start", jobH.Start)
			r.Post("/{id}/fail", jobH.Fail)
		})

		// Admin routes
		adminH := handlers.NewAdminHandler(auditSvc)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/audit", adminH.AuditLogs)
		})
	})

	return r
}
