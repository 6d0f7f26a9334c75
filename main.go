package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"conecta/global"
	"conecta/logger"
	mid "conecta/middleware"
	chatmod "conecta/module/chat"
	"conecta/module/media"
	"conecta/module/user"
	chatgw "conecta/service/chat"
	"conecta/service/storage"
)

func main() {
	cfg := global.Load()
	cfg.ConfigIds()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	userStore := user.NewStore(pool)
	chatStore := chatmod.NewStore(pool)
	if err := userStore.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := chatStore.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Presence mirror is optional: no REDIS_ADDR means local-only
	// presence.
	var mirror chatgw.Mirror
	if cfg.RedisAddr != "" {
		rp, err := storage.NewRedisPresence(storage.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 0)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer rp.Close()
		mirror = rp
	}

	jwtOpts := cfg.JWTOptions()

	gateway := chatgw.NewServer(chatgw.Config{AllowAllOrigin: cfg.AllowAllOrigin},
		chatgw.JWTAuthenticator{Opts: jwtOpts}, mirror)
	defer gateway.Close()

	userSvc := user.NewService(userStore, jwtOpts)
	chatSvc := chatmod.NewService(chatStore, gateway)

	mediaStore, err := media.NewDiskStore(cfg.MediaDir, "/media")
	if err != nil {
		log.Fatalf("media store: %v", err)
	}

	userHandler := user.NewHandler(userSvc)
	chatHandler := chatmod.NewHandler(chatSvc)
	mediaHandler := media.NewHandler(mediaStore)

	r := gin.New()
	r.Use(gin.Recovery())

	routes := mid.NewRoutes(mid.Auth(jwtOpts))
	api := r.Group("/api")

	routes.POST(api, "/auth/register", userHandler.Register, mid.RouteOpt{IsAuth: false})
	routes.POST(api, "/auth/login", userHandler.Login, mid.RouteOpt{IsAuth: false})

	routes.GET(api, "/user/profile", userHandler.Profile, mid.RouteOpt{IsAuth: true})
	routes.GET(api, "/users/search-by-email", userHandler.SearchByEmail, mid.RouteOpt{IsAuth: true})
	routes.POST(api, "/user/contacts", userHandler.SaveContact, mid.RouteOpt{IsAuth: true})
	routes.GET(api, "/user/contacts", userHandler.Contacts, mid.RouteOpt{IsAuth: true})

	routes.GET(api, "/conversations", chatHandler.Conversations, mid.RouteOpt{IsAuth: true})
	routes.POST(api, "/conversations/start", chatHandler.StartConversation, mid.RouteOpt{IsAuth: true})
	routes.GET(api, "/conversations/:id", chatHandler.History, mid.RouteOpt{IsAuth: true})
	routes.POST(api, "/messages", chatHandler.SendMessage, mid.RouteOpt{IsAuth: true})

	routes.POST(api, "/upload", mediaHandler.Upload, mid.RouteOpt{IsAuth: true})
	routes.GET(api, "/ping", func(c *gin.Context) { c.String(200, "pong") }, mid.RouteOpt{IsAuth: false})

	r.Static("/media", cfg.MediaDir)

	// Realtime channel; the bearer credential is checked before the
	// upgrade completes.
	r.GET("/ws", gateway.HandleWS)

	logger.Infof("[HTTP] listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
