package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"sportmatch-service/internal/handler"
	"sportmatch-service/pkg/middleware"
)

const (
	setupPrefix = "/api/v1/setup"
	setupStart  = "/api/v1/setup/step/1"
)

// SetupRoutes wires every endpoint. Three tiers: public, authenticated setup
// routes, and the gated application behind profile completion.
func SetupRoutes(
	r chi.Router,
	authHandler *handler.AuthHandler,
	setupHandler *handler.SetupHandler,
	matchHandler *handler.MatchHandler,
	friendHandler *handler.FriendHandler,
	chatHandler *handler.ChatHandler,
	groupHandler *handler.GroupHandler,
	wsHandler *handler.WSHandler,
	auth *middleware.AuthMiddleware,
	rdb *redis.Client,
) chi.Router {

	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "global"))

	gate := middleware.NewProfileGate(setupPrefix, setupStart)

	r.Route("/api/v1", func(api chi.Router) {

		// ---------- Public ----------
		api.Get("/health", wsHandler.Health)

		api.Group(func(pub chi.Router) {
			pub.Use(middleware.RateLimiter(rdb, 10, time.Minute, 15*time.Minute, "auth"))
			pub.Post("/auth/register", authHandler.Register)
			pub.Post("/auth/login", authHandler.Login)
		})

		// ---------- Authenticated ----------
		api.Group(func(authed chi.Router) {
			authed.Use(auth.Require())

			// Setup routes stay outside the gate so incomplete profiles can
			// finish onboarding.
			authed.Route("/setup", func(setup chi.Router) {
				setup.Get("/status", setupHandler.Status)
				setup.Post("/step/{step}", setupHandler.SubmitStep)
			})

			// Everything below redirects to setup until the profile is
			// complete.
			authed.Group(func(gated chi.Router) {
				gated.Use(gate.Gate)

				gated.Get("/profile/me", matchHandler.Me)
				gated.Get("/users/{userID}/profile", matchHandler.PublicProfile)
				gated.Get("/sports", matchHandler.Sports)
				gated.Get("/search/partners", matchHandler.Search)

				gated.Route("/friends", func(fr chi.Router) {
					fr.Get("/", friendHandler.List)
					fr.Post("/requests", friendHandler.Send)
					fr.Get("/requests/incoming", friendHandler.Incoming)
					fr.Post("/requests/{requestID}/respond", friendHandler.Respond)
				})

				gated.Route("/chat", func(ch chi.Router) {
					ch.Post("/messages", chatHandler.Send)
					ch.Get("/conversations/{userID}", chatHandler.Conversation)
				})

				gated.Route("/groups", func(gr chi.Router) {
					gr.Post("/", groupHandler.Create)
					gr.Get("/mine", groupHandler.Mine)
					gr.Get("/{groupID}", groupHandler.Get)
					gr.Post("/{groupID}/join", groupHandler.Join)
					gr.Post("/{groupID}/leave", groupHandler.Leave)
					gr.Get("/{groupID}/posts", groupHandler.Posts)
					gr.Post("/{groupID}/posts", groupHandler.CreatePost)
				})

				gated.Route("/posts", func(ps chi.Router) {
					ps.Delete("/{postID}", groupHandler.DeletePost)
					ps.Post("/{postID}/comments", groupHandler.AddComment)
					ps.Post("/{postID}/like", groupHandler.Like)
				})

				gated.Get("/ws", wsHandler.Serve)
			})
		})
	})

	return r
}
