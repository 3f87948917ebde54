package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/config"
	httpapi "github.com/rajeev-qa/Kartavya-PMS-sub000/internal/api/http"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/api/http/middleware"
	authmw "github.com/rajeev-qa/Kartavya-PMS-sub000/internal/auth/middleware"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/issues"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/projects"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/users"
	wfhttp "github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/http"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/repository"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/service"
)

type RouterDeps struct {
	Config *config.Config
	// DB is the database/sql view over the server pool.
	DB *sql.DB
	// DBPinger reports pool health; usually the *pgxpool.Pool itself.
	DBPinger httpapi.Pinger
	// Redis is optional.
	Redis *redis.Client
	// Verifier is required when AUTH_MODE=firebase.
	Verifier authmw.TokenVerifier
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-Id", "X-User-Email", "X-User-Name", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware())

	var redisPinger httpapi.Pinger
	if dep.Redis != nil {
		redisPinger = RedisPinger{Client: dep.Redis}
	}
	healthHandler := httpapi.NewHealthHandler("kartavya-workflows", cfg.App.Version, dep.DBPinger, redisPinger)
	healthHandler.RegisterRoutes(r)

	userRepo := users.NewRepo(dep.DB)
	projectRepo := projects.NewRepo(dep.DB)
	issueRepo := issues.NewRepo(dep.DB)
	workflowRepo := repository.NewWorkflowRepository(dep.DB)
	assigneeRepo := repository.NewDefaultAssigneeRepository(dep.DB)

	workflowSvc := service.NewWorkflowService(workflowRepo, projectRepo)
	var cache *repository.Cache
	if dep.Redis != nil {
		cache = repository.NewCache(dep.Redis, cfg.Redis.CacheTTL)
		workflowSvc = workflowSvc.WithCache(cache)
	}
	assigneeSvc := service.NewAssigneeService(assigneeRepo, projectRepo, userRepo, issueRepo)
	transitionSvc := service.NewTransitionService(workflowRepo, issueRepo)

	api := r.Group("/api")
	api.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst).Middleware())
	if cfg.App.AuthMode == config.AuthModeFirebase {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier, userRepo))
	} else {
		api.Use(authmw.HeaderAuthMiddleware(userRepo))
	}

	handler := wfhttp.New(workflowSvc, assigneeSvc, transitionSvc, cfg.IsProduction())
	if cache != nil {
		handler = handler.WithEvents(cache)
	}
	handler.Register(api.Group("/workflows"))

	return r
}
