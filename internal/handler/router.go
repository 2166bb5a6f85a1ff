package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authHandler "github.com/kavyanshpal/kpchat/internal/handler/auth"
	chatHandler "github.com/kavyanshpal/kpchat/internal/handler/chat"
	conversationHandler "github.com/kavyanshpal/kpchat/internal/handler/conversation"
	prefsHandler "github.com/kavyanshpal/kpchat/internal/handler/prefs"
	speechHandler "github.com/kavyanshpal/kpchat/internal/handler/speech"
	middlewarePkg "github.com/kavyanshpal/kpchat/internal/middleware"
	authService "github.com/kavyanshpal/kpchat/internal/service/auth"
	chatService "github.com/kavyanshpal/kpchat/internal/service/chat"
	"github.com/kavyanshpal/kpchat/internal/service/exchange"
	prefsService "github.com/kavyanshpal/kpchat/internal/service/prefs"
	"github.com/kavyanshpal/kpchat/internal/service/render"
	speechService "github.com/kavyanshpal/kpchat/internal/service/speech"
)

// NewRouter wires HTTP routes to core services. controller and speechSvc may
// be nil; their endpoints then report unavailable.
func NewRouter(
	authSvc *authService.Service,
	chatSvc *chatService.Service,
	prefsSvc *prefsService.Service,
	controller *exchange.Controller,
	speechSvc *speechService.Service,
	renderer *render.Renderer,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		authHandler.New(authSvc, chatSvc).RegisterRoutes(api)
		conversationHandler.New(authSvc, chatSvc, renderer).RegisterRoutes(api)
		chatHandler.New(controller).RegisterRoutes(api)
		prefsHandler.New(authSvc, prefsSvc).RegisterRoutes(api)
		speechHandler.New(speechSvc, log).RegisterRoutes(api)
	})

	return r
}
