package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"planportal/internal/http/middleware"
	"planportal/internal/service"
)

// Services are the dependencies of the API routes.
type Services struct {
	Auth         service.AuthService
	Account      service.AccountService
	Profile      service.ProfileService
	Uploads      service.UploadService
	Drafts       service.DraftService
	Projects     service.ProjectService
	Registration service.RegistrationService
	Letterhead   service.LetterheadService
}

// RouteConfig holds the non-service inputs of RegisterRoutes.
type RouteConfig struct {
	JWTSecret []byte
	Gatherer  prometheus.Gatherer
	// RateLimit is requests per minute per IP on /api; zero disables limiting.
	RateLimit int
}

func rateLimit(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	})
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, cfg RouteConfig) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	strict := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RateLimit > 0 {
		api.Use(rateLimit(cfg.RateLimit))
		// Code issuance, sign-in and login id probing get a tighter budget.
		strict = rateLimit(max(cfg.RateLimit/6, 1))
	}
	protected := middleware.JWTProtected(cfg.JWTSecret)

	api.Post("/auth/login", strict, Login(svc.Auth))
	api.Post("/auth/otp", strict, RequestOTP(svc.Auth))
	api.Post("/auth/verify", strict, VerifyOTP(svc.Auth))
	api.Post("/get-user-email", strict, LoginIDTaken(svc.Account))
	api.Post("/auth/refresh", Refresh(svc.Auth))
	api.Post("/auth/logout", Logout(svc.Auth))
	api.Get("/auth/user", protected, GetUser(svc.Auth))
	api.Put("/auth/user", protected, UpdatePassword(svc.Auth))

	api.Post("/set-user-role", protected, SetUserRole(svc.Account))
	api.Post("/functions/update-user-password", protected, UpdateUserPassword(svc.Account))
	api.Post("/register/:form", Register(svc.Registration))

	api.Get("/profile", protected, GetProfile(svc.Profile))
	api.Put("/profile", protected, UpdateProfile(svc.Profile))
	api.Get("/profile/documents/check", protected, CheckDocuments(svc.Profile))
	api.Put("/profile/documents/:purpose", protected, ReplaceDocument(svc.Profile))

	api.Get("/files", protected, ListFiles(svc.Uploads))
	api.Post("/files", protected, UploadFile(svc.Uploads))
	api.Delete("/files", protected, DeleteFile(svc.Uploads))
	api.Post("/files/check", protected, CheckFile(svc.Uploads))

	api.Get("/drafts/:form", protected, GetDraft(svc.Drafts))
	api.Put("/drafts/:form", protected, SaveDraft(svc.Drafts))
	api.Delete("/drafts/:form", protected, DeleteDraft(svc.Drafts))

	api.Get("/projects", protected, ListProjects(svc.Projects))
	api.Post("/projects", protected, CreateProject(svc.Projects))
	api.Get("/projects/:id", protected, GetProject(svc.Projects))
	api.Put("/projects/:id", protected, PatchProject(svc.Projects))
	api.Get("/dashboard", protected, GetDashboard(svc.Projects))

	api.Post("/letterhead", protected, GenerateLetterhead(svc.Letterhead))
}
