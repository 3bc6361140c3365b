package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	"marketplace/internal/breaker"
	"marketplace/internal/cache"
	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/httpx"
	"marketplace/internal/kafka"
	"marketplace/internal/mail"
	"marketplace/internal/media"
	"marketplace/internal/orders"
	"marketplace/internal/products"
	"marketplace/internal/shops"
	"marketplace/internal/storage/memory"
	mongostore "marketplace/internal/storage/mongo"
	pgstore "marketplace/internal/storage/postgres"
	"marketplace/internal/store"
	"marketplace/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	binding.EnableDecoderDisallowUnknownFields = true

	ctx := context.Background()

	s, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		s.Products = cache.NewProducts(s.Products, cache.NewRedisCache(rdb, cfg.CacheTTL))
		log.Printf("product cache: redis %s", cfg.RedisAddr)
	}

	var publisher kafka.Publisher = kafka.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers)
		log.Printf("order events: kafka %v", cfg.KafkaBrokers)
	}

	r := gin.New()
	r.Use(apperr.Recovery(), httpx.RequestID(), httpx.CORS(cfg.CORSOrigins), gin.Logger())

	var uploader media.Uploader
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			log.Fatal(err)
		}
		uploader = cld
	} else {
		disk, err := media.NewDisk(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			log.Fatal(err)
		}
		r.Static("/uploads", cfg.UploadDir)
		uploader = disk
	}
	uploader = media.WithBreaker(uploader, breaker.Default)

	mailer := mail.NewLogMailer()
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
	}
	mailer = mail.WithBreaker(mailer, breaker.Default)

	jwtMgr := auth.NewJWTManager(auth.JWTConfig{
		Issuer: cfg.JWTIssuer,
		Secret: cfg.JWTSecret,
		TTL:    time.Duration(cfg.JWTTTLHours) * time.Hour,
	})
	activation := auth.NewJWTManager(auth.JWTConfig{
		Issuer: cfg.JWTIssuer,
		Secret: cfg.ActivationSecret,
		TTL:    cfg.ActivationTTL,
	})
	gate := auth.NewGate(jwtMgr, s.Users, s.Shops)
	sessions := auth.Sessions{JWT: jwtMgr, Secure: cfg.CookieSecure}

	userHandler := users.NewHandler(users.Dependencies{
		Users:             s.Users,
		Uploader:          uploader,
		Mailer:            mailer,
		Sessions:          sessions,
		Activation:        activation,
		ActivationBaseURL: cfg.ActivationBaseURL,
	})
	shopHandler := shops.NewHandler(shops.Dependencies{
		Shops:             s.Shops,
		Uploader:          uploader,
		Mailer:            mailer,
		Sessions:          sessions,
		Activation:        activation,
		ActivationBaseURL: cfg.ActivationBaseURL,
	})
	productHandler := products.NewHandler(products.NewCatalog(s.Products, s.Shops, uploader), s.Products)
	orderHandler := orders.NewHandler(orders.NewSplitter(s.Orders, publisher), s.Orders)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v2")
	userHandler.Routes(api.Group("/user"), gate)
	shopHandler.Routes(api.Group("/shop"), gate)
	productHandler.Routes(api.Group("/product"), gate)
	orderHandler.Routes(api.Group("/order"), gate)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (store=%s)", cfg.HTTPAddr, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := publisher.Close(); err != nil {
		log.Printf("close publisher: %v", err)
	}
	if err := s.Close(shutdownCtx); err != nil {
		log.Printf("close store: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	switch cfg.StoreDriver {
	case "mongo":
		database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, database); err != nil {
			return nil, err
		}
		return mongostore.New(database), nil
	case "postgres":
		if err := pgstore.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pgstore.New(pool), nil
	case "memory":
		log.Println("using in-memory store; data is lost on restart")
		return memory.New(), nil
	}
	return nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
}
