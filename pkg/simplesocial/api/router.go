package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// RouterConfig carries the HTTP-surface settings that are not services.
type RouterConfig struct {
	// ProxyAPIKey enables the externally-keyed comment proxy when set.
	ProxyAPIKey string
}

// NewRouter assembles the full HTTP surface: public reads, token-protected
// mutations, and the externally-keyed comment proxy.
func NewRouter(service simplesocial.Service, auth AuthService, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	authHandler := NewAuthHandler(auth)
	postHandler := NewPostHandler(service)
	commentHandler := NewCommentHandler(service)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Mount("/auth", authHandler.Routes())

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(auth))
		r.Get("/users/me", authHandler.Me)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.ListPosts)
		r.Get("/{id}", postHandler.GetPost)
		r.Get("/{postID}/comments", postHandler.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(auth))
			r.Post("/", postHandler.CreatePost)
			r.Put("/{id}", postHandler.UpdatePost)
			r.Delete("/{id}", postHandler.DeletePost)
			r.Post("/{postID}/comments", postHandler.CreateComment)
			r.Post("/{id}/image", postHandler.AttachImage)
		})
	})

	r.Route("/comments", func(r chi.Router) {
		r.Get("/{id}", commentHandler.GetComment)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(auth))
			r.Put("/{id}", commentHandler.UpdateComment)
			r.Delete("/{id}", commentHandler.DeleteComment)
		})
	})

	if cfg.ProxyAPIKey != "" {
		proxyHandler := NewProxyHandler(service, cfg.ProxyAPIKey)
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(auth))
			r.Post("/mcp/comments", proxyHandler.CreateComment)
		})
	}

	return r
}
