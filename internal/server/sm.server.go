package server

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sportmatch-service/internal/config"
	"sportmatch-service/internal/handler"
	"sportmatch-service/internal/repository"
	"sportmatch-service/internal/router"
	"sportmatch-service/internal/usecase"
	"sportmatch-service/internal/ws"
	"sportmatch-service/pkg/cache"
	"sportmatch-service/pkg/jwtutil"
	"sportmatch-service/pkg/middleware"
	"sportmatch-service/pkg/utils/id"
)

func NewServer(cfg config.AppConfig) *http.Server {
	// --- Init Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	// --- Connect Postgres ---
	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect DB: %v", err)
	}

	// --- Init Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	log.Println("[Redis] Connected successfully")

	redisCache := cache.NewCacheWithClient(rdb)

	// --- Init ID generator ---
	sf, err := id.NewSnowflake(cfg.SnowflakeNode)
	if err != nil {
		log.Fatalf("failed to init snowflake: %v", err)
	}

	tokens := jwtutil.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)

	// --- Init Repositories ---
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	sportRepo := repository.NewSportRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	chatRepo := repository.NewChatRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	// --- Init Realtime ---
	publisher := ws.NewEventPublisher(rdb)
	hub := ws.NewHub(ws.NewChannelAuthorizer(groupRepo), logger)
	go ws.ListenRealtimeEvents(ctx, rdb, hub)

	// --- Init Usecases ---
	authUsecase := usecase.NewAuthUsecase(userRepo, tokens, sf, logger)
	setupUsecase := usecase.NewSetupUsecase(profileRepo, sportRepo, redisCache, logger)
	matchUsecase := usecase.NewMatchUsecase(profileRepo, sportRepo, logger)
	friendUsecase := usecase.NewFriendUsecase(friendRepo, userRepo, logger)
	chatUsecase := usecase.NewChatUsecase(chatRepo, friendRepo, publisher, logger)
	groupUsecase := usecase.NewGroupUsecase(groupRepo, publisher, logger)

	// --- Init Middleware ---
	auth := middleware.NewAuthMiddleware(tokens, profileRepo, redisCache)

	// --- Init Handlers ---
	authHandler := handler.NewAuthHandler(authUsecase, logger)
	setupHandler := handler.NewSetupHandler(setupUsecase, logger)
	matchHandler := handler.NewMatchHandler(matchUsecase, logger)
	friendHandler := handler.NewFriendHandler(friendUsecase, logger)
	chatHandler := handler.NewChatHandler(chatUsecase, logger)
	groupHandler := handler.NewGroupHandler(groupUsecase, logger)
	wsHandler := handler.NewWSHandler(hub, logger)

	log.Println("[SportMatch] Handlers initialized")

	// --- Router ---
	r := chi.NewRouter()
	r = router.SetupRoutes(r,
		authHandler, setupHandler, matchHandler,
		friendHandler, chatHandler, groupHandler, wsHandler,
		auth, rdb,
	).(*chi.Mux)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}
