package main

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/letmebeesther/plan-prove/internal/certify"
    "github.com/letmebeesther/plan-prove/internal/config"
    "github.com/letmebeesther/plan-prove/internal/database"
    "github.com/letmebeesther/plan-prove/internal/handler"
    "github.com/letmebeesther/plan-prove/internal/queue"
    "github.com/letmebeesther/plan-prove/internal/repository"
    "github.com/letmebeesther/plan-prove/internal/router"
    "github.com/letmebeesther/plan-prove/internal/storage"
    "github.com/letmebeesther/plan-prove/internal/verification"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()

    // Repositories.
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    profiles := repository.NewProfileRepo(db)
    plans := repository.NewPlanRepo(db)
    evidence := repository.NewEvidenceRepo(db, plans)
    feed := repository.NewFeedRepo(db)
    challenges := repository.NewChallengeRepo(db)
    fame := repository.NewHallOfFameRepo(db)

    {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        if err := challenges.SeedDefaults(ctx); err != nil {
            log.Printf("challenge seed: %v", err)
        }
        cancel()
    }

    // Object store; uploads stay disabled without credentials.
    var uploads certify.Uploader
    if cfg.CloudName != "" {
        store, err := storage.NewCloudinaryStore(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudAPISecret)
        if err != nil {
            log.Fatalf("cloudinary: %v", err)
        }
        uploads = store
    } else {
        log.Println("cloudinary not configured; binary evidence uploads disabled")
    }

    codes := &verification.Service{
        Store:          verification.RedisCodeStore{Client: rdb},
        Sender:         verification.LogSender{},
        AllowedDomains: cfg.EmailDomains,
        TTL:            cfg.EmailCodeTTL,
    }

    certifier := &certify.Service{
        Store:          evidence,
        Uploads:        uploads,
        Codes:          codes,
        Classify:       certify.HeuristicClassifier{},
        Feed:           feed,
        Fame:           fame,
        Members:        challenges,
        AllowedDomains: cfg.EmailDomains,
        UploadTimeout:  cfg.UploadTimeout,
        UploadFolder:   cfg.UploadFolder,
    }

    // Handlers.
    authH := handler.NewAuthHandler(cfg, users, profiles, tokens)
    planH := handler.NewPlanHandler(plans, profiles)
    evidenceH := handler.NewEvidenceHandler(certifier, evidence, plans, codes)
    profileH := handler.NewProfileHandler(profiles, plans, uploads)
    feedH := handler.NewFeedHandler(feed, cfg.FeedWindow)
    challengeH := handler.NewChallengeHandler(challenges, feed)
    fameH := handler.NewHallOfFameHandler(fame)
    adminH := handler.NewAdminHandler(profiles)
    discoverH := handler.NewDiscoverHandler(plans)

    // Background consumer for the certification event log.
    go func() {
        if err := queue.StartCertificationConsumer(); err != nil {
            log.Printf("certification consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterPublic(e, discoverH, planH, challengeH, fameH, config.LoadCacheConfig(), rdb, cfg.JWTSecret)
    router.RegisterPlans(e, planH, evidenceH, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
    router.RegisterSocial(e, profileH, feedH, challengeH, cfg.JWTSecret)
    router.RegisterAdmin(e, adminH, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
