package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"elite-app/internal/auth"
	"elite-app/internal/config"
	apphttp "elite-app/internal/http"
	"elite-app/internal/repository"
	"elite-app/internal/repository/mongo"
	"elite-app/internal/repository/sqlite"
	"elite-app/internal/service"
	"elite-app/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, activities, closeStore, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup database: %v", err)
	}
	defer closeStore()

	revoker, closeRevoker, err := buildRevoker(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup token revocation: %v", err)
	}
	defer closeRevoker()

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("setup token issuer: %v", err)
	}
	logger.Infof("issuing tokens valid for %s", tokens.TTL())

	activityService := service.NewActivityService(activities)
	userService := service.NewUserService(
		users,
		activityService,
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		tokens,
		revoker,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = 8 << 20
	handler := apphttp.NewHandler(
		userService,
		activityService,
		service.NewStatusService(cfg.Status.Initial),
		storageSvc,
		tokens,
		revoker,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, repository.ActivityRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.Database.URI)
		if err != nil {
			return nil, nil, nil, err
		}
		stores, err := mongo.NewStores(ctx, client.Database(cfg.Database.Name))
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		logger.Infof("using mongo database %s", cfg.Database.Name)
		return stores.Users, stores.Activities, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warnf("mongo disconnect: %v", err)
			}
		}, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		stores, err := sqlite.NewStores(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return stores.Users, stores.Activities, func() { db.Close() }, nil
	}
}

func buildRevoker(ctx context.Context, cfg config.Config, logger *logrus.Logger) (auth.Revoker, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured, logout will not revoke tokens")
		return auth.NopRevoker{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Infof("revoking tokens in redis at %s", cfg.Redis.Addr)
	return auth.NewRedisRevoker(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Driver != config.StorageS3 {
		logger.Infof("storing uploads in %s", cfg.Storage.Dir)
		return storage.NewLocalService(cfg.Storage.Dir)
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix), nil
}
