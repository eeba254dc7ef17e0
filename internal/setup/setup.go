package setup

import (
	"context"

	"github.com/tftboard/tftboard/internal/config"
	"github.com/tftboard/tftboard/internal/email"
	"github.com/tftboard/tftboard/internal/handler"
	"github.com/tftboard/tftboard/internal/jwt"
	"github.com/tftboard/tftboard/internal/markdown"
	"github.com/tftboard/tftboard/internal/middleware"
	"github.com/tftboard/tftboard/internal/realtime"
	"github.com/tftboard/tftboard/internal/service"
	"github.com/tftboard/tftboard/internal/storage/pg"
	"github.com/tftboard/tftboard/internal/utils"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Hub            *realtime.Hub
	Jwt            jwt.JwtService
}

// SetupDependencies initializes every component and starts the database
// change listener feeding the realtime hub. The listener stops when ctx
// is cancelled.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	sender := email.NewLogSender()
	jwtService := jwt.New(cfg.Private.JwtKey, cfg.Public.AccessTTL)

	auth := service.NewAuth(storage, sender, jwtService, &utils.PasswordValidator{}, &cfg.Public)
	posts := service.NewPost(storage, &utils.PostValidator{
		MaxTitleLen: cfg.Public.MaxTitleLen,
		MaxBodyLen:  cfg.Public.MaxBodyLen,
	})
	replies := service.NewReply(storage, &utils.ReplyValidator{MaxBodyLen: cfg.Public.MaxBodyLen})
	profiles := service.NewProfile(storage)

	hub := realtime.NewHub()
	if err := storage.Listen(ctx, hub.Publish); err != nil {
		storage.Cleanup()
		return nil, err
	}

	h := handler.New(auth, posts, replies, profiles, hub, markdown.New(), cfg)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: middleware.NewAuth(jwtService),
		Hub:            hub,
		Jwt:            jwtService,
	}, nil
}
