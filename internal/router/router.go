package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tftboard/tftboard/internal/middleware/metrics"
	"github.com/tftboard/tftboard/internal/setup"
)

// New wires every route. Reads take OptionalAuth so signed-in callers get
// personalized responses; writes require NeedAuth. The events stream is
// exempt from the request timeout because it is long lived.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "apikey"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/refresh", h.Refresh)
			r.Post("/reset_password", h.ResetPassword)
			r.Post("/confirm_reset", h.ConfirmReset)
			r.Post("/resend", h.Resend)

			r.Group(func(r chi.Router) {
				r.Use(authMw.NeedAuth())
				r.Get("/me", h.Me)
				r.Patch("/me", h.UpdateUser)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.With(authMw.OptionalAuth()).Get("/", h.ListPosts)
			r.With(authMw.NeedAuth()).Post("/", h.CreatePost)

			r.Route("/{postId}", func(r chi.Router) {
				r.With(authMw.OptionalAuth()).Get("/", h.GetPost)
				r.With(authMw.OptionalAuth()).Get("/replies", h.ListReplies)
				r.With(authMw.NeedAuth()).Post("/replies", h.CreateReply)
				r.Get("/events", h.ReplyEvents)
			})
		})

		r.Route("/replies/{replyId}", func(r chi.Router) {
			r.With(authMw.OptionalAuth()).Get("/", h.GetReply)
			r.With(authMw.OptionalAuth()).Get("/rank", h.ReplyRank)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.GetProfileByName)
			r.Get("/{userId}", h.GetProfile)
			r.With(authMw.NeedAuth()).Put("/me", h.UpsertProfile)
		})

		r.Post("/render", h.RenderPreview)
	})

	return r
}
