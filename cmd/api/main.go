package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/verifico/verifico-backend/internal/config"
	"github.com/verifico/verifico-backend/internal/handler"
	"github.com/verifico/verifico-backend/internal/middleware"
	"github.com/verifico/verifico-backend/internal/repository"
	"github.com/verifico/verifico-backend/internal/service"
	"github.com/verifico/verifico-backend/pkg/cache"
	"github.com/verifico/verifico-backend/pkg/database"
	"github.com/verifico/verifico-backend/pkg/email"
	"github.com/verifico/verifico-backend/pkg/payment"
	"github.com/verifico/verifico-backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg := config.LoadConfig()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("database init failed", zap.Error(err))
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zapLogger.Fatal("redis init failed", zap.Error(err))
	}
	idempotencyCache := cache.NewIdempotencyCache(redisClient)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	creditTxRepo := repository.NewCreditTransactionRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// External services
	emailService := email.NewEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	// Services
	creditService := service.NewCreditService(creditTxRepo, zapLogger)
	paymentService := service.NewPaymentService(
		paymentRepo,
		userRepo,
		idempotencyCache,
		stripeService,
		emailService,
		zapLogger,
	)
	authService := service.NewAuthService(userRepo, emailService, zapLogger)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo, creditService, zapLogger)
	commentService := service.NewCommentService(commentRepo, postRepo, zapLogger)

	validator := utils.NewValidator()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, validator)
	userHandler := handler.NewUserHandler(userService, validator)
	creditHandler := handler.NewCreditHandler(creditService)
	paymentHandler := handler.NewPaymentHandler(paymentService, validator, zapLogger)
	postHandler := handler.NewPostHandler(postService, validator)
	commentHandler := handler.NewCommentHandler(commentService, validator)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "https://verifico.app, http://localhost:5173",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Stripe webhook (public, verified by signature)
	api.Post("/payments/webhook/stripe", paymentHandler.HandleStripeWebhook)

	// Public catalog and content reads
	api.Get("/payments/packages", paymentHandler.GetCreditPackages)
	api.Get("/posts", postHandler.GetPosts)
	api.Get("/posts/:id", postHandler.GetPost)
	api.Get("/posts/:postId/comments", commentHandler.GetComments)

	// Protected routes
	api.Use(middleware.AuthMiddleware())
	{
		user := api.Group("/user")
		user.Get("/profile", userHandler.GetMyProfile)
		user.Put("/profile", userHandler.UpdateProfile)

		credits := api.Group("/credits")
		credits.Get("/balance", creditHandler.GetBalance)
		credits.Get("/transactions", creditHandler.GetTransactions)

		payments := api.Group("/payments")
		payments.Post("/payment-intent", paymentHandler.CreatePaymentIntent)
		payments.Get("/history", paymentHandler.GetPurchaseHistory)

		posts := api.Group("/posts")
		posts.Post("/", postHandler.CreatePost)
		posts.Put("/:id", postHandler.UpdatePost)
		posts.Delete("/:id", postHandler.DeletePost)
		posts.Post("/:id/boost", postHandler.BoostPost)
		posts.Post("/:postId/comments", commentHandler.PostComment)

		comments := api.Group("/comments")
		comments.Delete("/:id", commentHandler.DeleteComment)
		comments.Post("/:id/helpful", commentHandler.MarkHelpful)
	}

	zapLogger.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
