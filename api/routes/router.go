package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk-backend/api/controllers"
	"github.com/fleetdesk/fleetdesk-backend/api/middleware"
	"github.com/fleetdesk/fleetdesk-backend/internal/auth"
	"github.com/fleetdesk/fleetdesk-backend/internal/companies"
	"github.com/fleetdesk/fleetdesk-backend/internal/expenses"
	"github.com/fleetdesk/fleetdesk-backend/internal/invites"
	"github.com/fleetdesk/fleetdesk-backend/internal/loads"
	"github.com/fleetdesk/fleetdesk-backend/pkg/auth/session"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    sessionManager
	Auth        auth.Service
	Register    auth.RegisterService
	Companies   companies.Service
	Dispatchers *invites.DispatcherService
	Drivers     *invites.DriverService
	Loads       loads.Service
	Expenses    expenses.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// Leave the stores as nil interfaces when redis is absent so the
	// middlewares disable themselves instead of calling a nil client.
	var limitStore interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	}
	var idemStore redis.IdempotencyStore
	var redisPinger redis.Pinger
	if p.Redis != nil {
		limitStore = p.Redis
		idemStore = p.Redis
		redisPinger = p.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limitStore, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limitStore, logg)).Post("/register", controllers.AuthRegister(p.Register, p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Sessions, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		// Invitees preview and redeem codes before they carry a company
		// claim, so these routes sit outside the company-context group.
		r.Route("/v1/dispatchers/invites", func(r chi.Router) {
			r.Get("/preview", controllers.InvitePreview(p.Dispatchers, logg))
			r.Post("/redeem", controllers.InviteRedeem(p.Dispatchers, logg))
		})
		r.Route("/v1/drivers/invites", func(r chi.Router) {
			r.Get("/preview", controllers.InvitePreview(p.Drivers, logg))
			r.Post("/redeem", controllers.InviteRedeem(p.Drivers, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CompanyContext(logg))

			r.Route("/v1/companies", func(r chi.Router) {
				r.Get("/me", controllers.CompanyMe(p.Companies, logg))
				r.Put("/me", controllers.CompanyUpdate(p.Companies, logg))
				r.Get("/me/members", controllers.CompanyMembers(p.Companies, logg))
			})

			r.Route("/v1/dispatchers", func(r chi.Router) {
				r.Get("/", controllers.MemberList(p.Dispatchers, logg))
				r.Delete("/{id}", controllers.MemberRemove(p.Dispatchers, logg))
				r.With(middleware.RequireRole(string(enums.UserRoleOwner), logg)).
					Patch("/{id}/fee", controllers.DispatcherFeeUpdate(p.Dispatchers, logg))
				r.Post("/invites", controllers.InviteGenerate(p.Dispatchers, logg))
				r.Get("/invites", controllers.InviteList(p.Dispatchers, logg))
				r.Delete("/invites/{id}", controllers.InviteRevoke(p.Dispatchers, logg))
			})
			r.Route("/v1/drivers", func(r chi.Router) {
				r.Get("/", controllers.MemberList(p.Drivers, logg))
				r.Delete("/{id}", controllers.MemberRemove(p.Drivers, logg))
				r.Post("/invites", controllers.InviteGenerate(p.Drivers, logg))
				r.Get("/invites", controllers.InviteList(p.Drivers, logg))
				r.Delete("/invites/{id}", controllers.InviteRevoke(p.Drivers, logg))
			})

			r.Route("/v1/loads", func(r chi.Router) {
				r.Get("/", controllers.LoadList(p.Loads, logg))
				r.Post("/", controllers.LoadCreate(p.Loads, logg))
				r.Get("/{id}", controllers.LoadGet(p.Loads, logg))
				r.Patch("/{id}", controllers.LoadUpdateStatus(p.Loads, logg))
				r.Delete("/{id}", controllers.LoadDelete(p.Loads, logg))
				r.Post("/{id}/assign", controllers.LoadAssign(p.Loads, logg))
			})

			r.Route("/v1/expenses", func(r chi.Router) {
				r.Get("/", controllers.ExpenseList(p.Expenses, logg))
				r.Post("/", controllers.ExpenseCreate(p.Expenses, logg))
				r.Get("/summary", controllers.ExpenseSummary(p.Expenses, logg))
				r.Delete("/{id}", controllers.ExpenseDelete(p.Expenses, logg))
			})
		})
	})

	return r
}
