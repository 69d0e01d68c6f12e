package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"printshop/internal/config"
	"printshop/internal/handler"
	"printshop/internal/infra/db"
	"printshop/internal/infra/openai"
	infraRepo "printshop/internal/infra/repository"
	"printshop/internal/infra/token"
	"printshop/internal/infra/twilio"
	"printshop/internal/logger"
	"printshop/internal/notify"
	"printshop/internal/repository"
	"printshop/internal/server"
	"printshop/internal/usecase"
	auth "printshop/internal/usecase/auth_usecase"
	"printshop/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", "error", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("db migrate failed", "error", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	if cfg.SeedCatalog {
		if _, err := db.SeedProducts(ctx, productRepo, log); err != nil {
			log.Fatal("catalog seed failed", "error", err)
		}
	}

	//注文通知
	notifications, err := buildNotifyPipeline(cfg, log, orderRepo)
	if err != nil {
		log.Fatal("notification pipeline failed", "error", err)
	}

	//画像生成（キーが無ければ503を返す）
	var imageGen usecase.ImageGenerator
	if cfg.OpenAIAPIKey != "" {
		client, err := openai.NewImageClient(log, openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIImageModel,
			Size:    cfg.OpenAIImageSize,
			Timeout: cfg.OpenAITimeout,
		})
		if err != nil {
			log.Fatal("openai client failed", "error", err)
		}
		imageGen = client
	} else {
		log.Warn("OPENAI_API_KEY not set, image generation disabled")
	}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	authValidator := validator.NewAuthValidator()
	orderValidator := validator.NewOrderValidator()

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, authValidator)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, token.RealClock{}, authValidator)
	meUC := auth.NewGetMeUsecase(userRepo)
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(productRepo, orderValidator)
	orderUC := usecase.NewOrderUsecase(txm, orderValidator, userRepo, notifications, log)
	imageUC := usecase.NewImageUsecase(imageGen, log)

	//Handler生成
	e := server.New(cfg, log, userRepo, server.Handlers{
		Auth:     handler.NewAuthHandler(registerUC, loginUC, meUC, log),
		Products: handler.NewProductHandler(productUC, log),
		Cart:     handler.NewCartHandler(cartUC, log),
		Orders:   handler.NewOrderHandler(orderUC, log),
		Images:   handler.NewImageHandler(imageUC, log),
	})

	//Server起動
	addr := ":" + cfg.Port
	if err := server.Start(ctx, e, addr, log); err != nil {
		log.Error("http server stopped", "error", err)
	}

	//残っている通知を流してからforwarderを止める
	if err := notifications.Close(); err != nil {
		log.Warn("notification pipeline close failed", "error", err)
	}
}

// memoryならworkerが直接通知、redis/kafkaならbus経由でforwarderが通知
func buildNotifyPipeline(
	cfg config.Config,
	log *logger.Logger,
	orders repository.OrderRepository,
) (*notify.Pipeline, error) {
	var notifier notify.Notifier = notify.NewLogNotifier(log, cfg.WhatsAppTo)
	if cfg.WhatsAppEnabled() {
		wa, err := twilio.NewWhatsAppNotifier(log, twilio.Config{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioWhatsAppFrom,
			To:         cfg.WhatsAppTo,
			BaseURL:    cfg.TwilioBaseURL,
		})
		if err != nil {
			return nil, err
		}
		notifier = wa
	}
	handle := notify.NewOrderNotificationHandler(log, notifier, orders).Handle

	var bus notify.Bus
	var err error
	switch cfg.NotifyBus {
	case "redis":
		bus, err = notify.NewRedisBus(log, notify.RedisBusConfig{
			Addr:     cfg.RedisAddr,
			Stream:   cfg.RedisStream,
			Group:    cfg.RedisGroup,
			Consumer: cfg.RedisConsumer,
		})
	case "kafka":
		bus, err = notify.NewKafkaBus(log, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	}
	if err != nil {
		return nil, err
	}

	p, err := notify.NewPipeline(log, bus, notify.PipelineConfig{
		QueueSize: cfg.NotifyQueueSize,
		Workers:   cfg.NotifyWorkers,
		Timeout:   30 * time.Second,
	}, handle)
	if err != nil {
		if bus != nil {
			_ = bus.Close()
		}
		return nil, err
	}
	log.Info("order notifications ready", "bus", cfg.NotifyBus)
	return p, nil
}
