package www

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"hacklab/platform/config"
	"hacklab/www/api"
	"hacklab/www/middleware"

	"github.com/redis/go-redis/v9"
)

type Router struct {
	Config *config.ConfigSettings
	Redis  *redis.Client
}

// Handler builds the route table with its middleware chains. Split out from
// Start so tests can drive the full stack without binding a listener.
func (router *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	api.SetConfig(router.Config)

	// MiddlewareChain applies the last middleware first, so the rate limiter
	// sits outermost and sheds traffic before token parsing touches the
	// database, while logging runs inside authentication and can attach the
	// resolved username.
	limiter := middleware.RateLimit(router.Redis, router.Config.MiscSettings.RateLimitRequests, router.Config.MiscSettings.RateLimitWindowSeconds)
	chain := func(roles ...string) middleware.Middleware {
		return middleware.MiddlewareChain(
			middleware.Logging,
			middleware.Authentication(roles...),
			middleware.Cors(router.Config),
			middleware.SecurityHeaders(router.Config),
			limiter,
		)
	}

	// Cross-origin preflights arrive as OPTIONS and never match the
	// method-qualified patterns below, so they get their own catch-all.
	// Cors answers them with 200 before the no-op handler runs.
	preflight := middleware.MiddlewareChain(middleware.Cors(router.Config), limiter)
	mux.HandleFunc("OPTIONS /", preflight(func(w http.ResponseWriter, r *http.Request) {}))

	/******************************************
	|                                         |
	|              PUBLIC ROUTES              |
	|                                         |
	******************************************/

	UNAUTH := chain("anonymous", "user", "admin")

	mux.HandleFunc("GET /{$}", UNAUTH(api.Root))
	mux.HandleFunc("GET /api/health", UNAUTH(api.Health))

	mux.HandleFunc("POST /api/auth/register", UNAUTH(api.Register))
	mux.HandleFunc("POST /api/auth/login", UNAUTH(api.Login))
	mux.HandleFunc("POST /api/auth/admin-login", UNAUTH(api.AdminLogin))

	mux.HandleFunc("GET /api/challenges", UNAUTH(api.GetChallenges))
	mux.HandleFunc("GET /api/challenges/categories", UNAUTH(api.GetChallengeCategories))
	mux.HandleFunc("GET /api/challenges/difficulties", UNAUTH(api.GetChallengeDifficulties))
	mux.HandleFunc("GET /api/challenges/{id}", UNAUTH(api.GetChallenge))

	mux.HandleFunc("GET /api/leaderboard", UNAUTH(api.GetLeaderboard))

	mux.HandleFunc("GET /api/ads", UNAUTH(api.GetAds))
	mux.HandleFunc("POST /api/ads/{id}/click", UNAUTH(api.ClickAd))

	mux.HandleFunc("POST /api/analytics/visit", UNAUTH(api.TrackVisit))

	/******************************************
	|                                         |
	|               AUTH ROUTES               |
	|                                         |
	******************************************/

	ALLAUTH := chain("user", "admin")

	mux.HandleFunc("GET /api/auth/me", ALLAUTH(api.Me))
	mux.HandleFunc("GET /api/auth/verify", ALLAUTH(api.VerifyToken))

	mux.HandleFunc("POST /api/challenges/{id}/submit", ALLAUTH(api.SubmitChallenge))
	mux.HandleFunc("GET /api/challenges/{id}/submissions", ALLAUTH(api.GetChallengeSubmissions))

	mux.HandleFunc("GET /api/leaderboard/progress", ALLAUTH(api.GetProgress))

	/******************************************
	|                                         |
	|               ADMIN ROUTES              |
	|                                         |
	******************************************/

	ADMINAUTH := chain("admin")

	mux.HandleFunc("POST /api/admin/challenges", ADMINAUTH(api.AdminCreateChallenge))
	mux.HandleFunc("GET /api/admin/challenges", ADMINAUTH(api.AdminGetChallenges))
	mux.HandleFunc("PATCH /api/admin/challenges/{id}", ADMINAUTH(api.AdminUpdateChallenge))
	mux.HandleFunc("DELETE /api/admin/challenges/{id}", ADMINAUTH(api.AdminDeleteChallenge))

	mux.HandleFunc("GET /api/admin/users", ADMINAUTH(api.AdminGetUsers))
	mux.HandleFunc("POST /api/admin/users/{id}/role", ADMINAUTH(api.AdminUpdateUserRole))

	mux.HandleFunc("POST /api/admin/ads", ADMINAUTH(api.AdminUpsertAd))
	mux.HandleFunc("GET /api/admin/ads", ADMINAUTH(api.AdminGetAds))
	mux.HandleFunc("POST /api/admin/ads/{id}/toggle", ADMINAUTH(api.AdminToggleAd))
	mux.HandleFunc("DELETE /api/admin/ads/{id}", ADMINAUTH(api.AdminDeleteAd))

	mux.HandleFunc("GET /api/admin/analytics/challenges", ADMINAUTH(api.AdminChallengeAnalytics))
	mux.HandleFunc("GET /api/admin/analytics/users", ADMINAUTH(api.AdminUserAnalytics))
	mux.HandleFunc("GET /api/admin/analytics/platform", ADMINAUTH(api.AdminPlatformAnalytics))
	mux.HandleFunc("GET /api/admin/analytics/visits", ADMINAUTH(api.GetVisitStats))
	mux.HandleFunc("GET /api/admin/graphs/scores", ADMINAUTH(api.AdminScoreChart))

	return mux
}

func (router *Router) Start() {
	// choose http/https
	var protocol string
	if router.Config.SslSettings == (config.SslConfig{}) {
		protocol = "http"
	} else {
		protocol = "https"
	}

	// start server
	server := http.Server{
		Addr:    fmt.Sprintf("%s:%d", router.Config.RequiredSettings.BindAddress, router.Config.MiscSettings.Port),
		Handler: router.Handler(),
	}
	slog.Info(fmt.Sprintf("Starting Web Server on %s://%s:%d", protocol, router.Config.RequiredSettings.BindAddress, router.Config.MiscSettings.Port))

	if router.Config.SslSettings != (config.SslConfig{}) {
		log.Fatal(server.ListenAndServeTLS(router.Config.SslSettings.HttpsCert, router.Config.SslSettings.HttpsKey))
	} else {
		log.Fatal(server.ListenAndServe())
	}
}
