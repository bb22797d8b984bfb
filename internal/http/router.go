package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/R-Mend/RMend-Backend/internal/account"
	"github.com/R-Mend/RMend-Backend/internal/auth"
	"github.com/R-Mend/RMend-Backend/internal/authority"
	"github.com/R-Mend/RMend-Backend/internal/authz"
	"github.com/R-Mend/RMend-Backend/internal/config"
	httpmiddleware "github.com/R-Mend/RMend-Backend/internal/http/middleware"
	"github.com/R-Mend/RMend-Backend/internal/report"
	"github.com/R-Mend/RMend-Backend/internal/service"
	"github.com/R-Mend/RMend-Backend/internal/taxonomy"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	accounts      *account.Service
	authorities   *authority.Service
	catalog       *taxonomy.Service
	reports       *report.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter wires repositories and services and returns the configured router.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) (http.Handler, error) {
	authorityRepo := authority.NewRepository(pool)
	authorityService := authority.NewService(authorityRepo)

	accountRepo := account.NewRepository(pool)
	accountService := account.NewService(accountRepo, authorityService)

	catalogRepo := taxonomy.NewRepository(pool)
	catalogService := taxonomy.NewService(catalogRepo, authorityService, redisClient)

	reportRepo := report.NewRepository(pool)
	reportService := report.NewService(reportRepo, catalogService, authorityService)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		accounts:      accountService,
		authorities:   authorityService,
		catalog:       catalogService,
		reports:       reportService,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Post("/users/", h.Register)
		public.Post("/token/login", h.Login)
		public.Post("/auth/refresh", h.Refresh)

		public.Post("/issue-groups/", h.ListIssueGroupsByLocation)
		public.Get("/issue-groups/base", h.ListBaseIssueGroups)

		public.Get("/reports", h.ListReportsNear)
		public.Post("/reports/create", h.CreateReport)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT(), authService.Tokens()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Post("/token/logout", h.Logout)

		private.Get("/users/me", h.Me)
		private.Put("/users/me", h.UpdateMe)
		private.Post("/users/me/employee-requests/create", h.CreateEmployeeRequest)

		private.Route("/authority/{id}", func(admin chi.Router) {
			admin.Get("/", h.GetAuthority)
			admin.Put("/", h.UpdateAuthority)
			admin.Post("/access-code/rotate", h.RotateAccessCode)

			admin.Get("/employee-requests", h.ListEmployeeRequests)
			admin.Delete("/employee-requests/{requestID}/delete", h.ResolveEmployeeRequest)

			admin.Get("/issue-groups", h.ListAuthorityIssueGroups)
			admin.Post("/issue-groups/create", h.CloneIssueGroup)
			admin.Delete("/issue-groups/delete", h.DeleteIssueGroup)

			admin.Post("/issue-types/create", h.CloneIssueType)
			admin.Delete("/issue-types/delete", h.DeleteIssueType)

			admin.Get("/reports", h.ListAuthorityReports)
			admin.Put("/reports/{reportID}/update", h.UpdateReport)
			admin.Delete("/reports/{reportID}/delete", h.DeleteReport)
		})
	})

	return r, nil
}

// actor loads the authenticated user and projects it into the access gate's
// view. Every authority-scoped handler goes through here.
func (h *Handler) actor(ctx context.Context) (*account.User, authz.Actor, error) {
	subject := httpmiddleware.GetSubject(ctx)
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, authz.Actor{}, account.ErrNotFound
	}

	user, err := h.accounts.GetUser(ctx, userID)
	if err != nil {
		return nil, authz.Actor{}, err
	}

	return user, user.Actor(), nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(chi.URLParam(r, name)))
}

// writeDomainError maps package sentinels onto the unified status scheme:
// 400 validation/out-of-range, 401 bad credentials/token, 403 not staff,
// 404 absent entity, 409 duplicate/already-member.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "user is not staff of this authority", nil)
	case errors.Is(err, account.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, account.ErrAccountDisabled):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidRefresh):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, report.ErrOutOfRange):
		WriteError(w, http.StatusBadRequest, "OUT_OF_RANGE", err.Error(), nil)
	case errors.Is(err, report.ErrInvalidState):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, account.ErrEmailTaken),
		errors.Is(err, account.ErrDuplicateRequest),
		errors.Is(err, account.ErrAlreadyMember),
		errors.Is(err, taxonomy.ErrAlreadyExists),
		errors.Is(err, authority.ErrNameTaken):
		WriteError(w, http.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, account.ErrRequestNotFound),
		errors.Is(err, authority.ErrNotFound),
		errors.Is(err, report.ErrNotFound),
		errors.Is(err, taxonomy.ErrGroupNotFound),
		errors.Is(err, taxonomy.ErrTypeNotFound),
		errors.Is(err, taxonomy.ErrBaseGroupNotFound),
		errors.Is(err, taxonomy.ErrBaseTypeNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
