package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campboard/campboard/handlers"
	"github.com/campboard/campboard/internal/accounts"
	"github.com/campboard/campboard/internal/config"
	"github.com/campboard/campboard/internal/database"
	"github.com/campboard/campboard/internal/export"
	"github.com/campboard/campboard/internal/identity"
	"github.com/campboard/campboard/internal/schedules"
	"github.com/campboard/campboard/internal/sessions"
	"github.com/campboard/campboard/internal/storage"
	"github.com/campboard/campboard/internal/store"
	"github.com/campboard/campboard/internal/tokens"
	"github.com/campboard/campboard/pkg/logger"
	"github.com/campboard/campboard/pkg/metrics"
	"github.com/campboard/campboard/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v oidc=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OIDC.Issuer != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond
	// to OPTIONS. Production should sit behind a stricter policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early: the rate limiter, the session blacklist and the
	// live-change notifier all want the same client.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Document store: Mongo-backed with Redis change notification in
	// production, in-memory fallback for local development.
	ctx := context.Background()
	var docStore store.Store
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		// retry/backoff tolerates startup races against the database container
		const maxAttempts = 5
		backoff := time.Second
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				mongoClient = client
				var notifier *store.Notifier
				if redisClient != nil {
					notifier = store.NewNotifier(redisClient)
				}
				docStore = store.NewMongoStore(client.Database(cfg.MongoDB.Database), notifier)
				logger.Infof("Connected to MongoDB: %s", cfg.MongoDB.Database)
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
	}
	if docStore == nil {
		logger.Warnf("no MongoDB available, falling back to in-memory store (data is lost on restart)")
		docStore = store.NewMemoryStore()
	}
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(ctx) }()
	}

	// Sessions: Redis preferred, Mongo second, in-process map as dev fallback.
	var sessionsSvc *sessions.Service
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("Using Redis for session storage")
	} else if mongoClient != nil {
		col := mongoClient.Database(cfg.MongoDB.Database).Collection("sessions")
		sessionsSvc = sessions.NewService(sessions.NewMongoRepository(col))
		logger.Infof("Using MongoDB for session storage")
	} else {
		sessionsSvc = sessions.NewService(sessions.NewMemoryRepository())
		logger.Warnf("using in-process session storage (dev only)")
	}

	accountsSvc := accounts.NewService(docStore)
	schedulesSvc := schedules.NewService(docStore)
	passwords := identity.NewPasswordProvider(docStore)

	// Optional external issuer. Local HS256 tokens always verify; an OIDC
	// verifier only adds the token-exchange login path.
	var oidcVer middleware.Verifier
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := identity.NewOIDCVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			oidcVer = ver
		}
	}
	if oidcVer == nil && strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		oidcVer = identity.NewInsecureVerifier()
	}

	// Optional object storage for summary exports.
	var exporter *export.Exporter
	minioCfg := storage.LoadMinIOConfig()
	if minioCfg.Endpoint != "" {
		objects, err := storage.NewMinIOStorage(minioCfg)
		if err != nil {
			logger.Warnf("failed to initialize object storage: %v", err)
		} else {
			var records *mongo.Collection
			if mongoClient != nil {
				records = mongoClient.Database(cfg.MongoDB.Database).Collection("exports")
			}
			exporter = export.NewExporter(objects, records)
			logger.Infof("Object storage ready: %s/%s", minioCfg.Endpoint, minioCfg.Bucket)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the parts this deployment was configured
	// with are actually usable
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		_, usingMemory := docStore.(*store.MemoryStore)
		deps["store"] = true
		if cfg.MongoDB.URI != "" && usingMemory {
			deps["store"] = false
			ready = false
		}
		deps["redis"] = true
		if cfg.Redis.Host != "" && redisClient == nil {
			deps["redis"] = false
			ready = false
		}
		deps["oidc"] = true
		if cfg.OIDC.Issuer != "" && oidcVer == nil {
			deps["oidc"] = false
			ready = false
		}

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.NewAuthHandler(cfg, passwords, accountsSvc, sessionsSvc, oidcVer).Register(r.Group("/"))
	handlers.RegisterSwagger(r)

	api := r.Group("/api/v1", middleware.AuthMiddleware(tokens.NewVerifier(cfg)))
	handlers.NewAccountHandler(accountsSvc).Register(api)
	handlers.NewScheduleHandler(schedulesSvc, exporter).Register(api)
	handlers.NewLiveHandler(schedulesSvc).Register(api)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting campboard on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
