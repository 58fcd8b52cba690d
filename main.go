package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/clients"
	"github.com/gamio/venue-booking/config"
	"github.com/gamio/venue-booking/config/db"
	redisclient "github.com/gamio/venue-booking/config/redis"
	"github.com/gamio/venue-booking/controllers/auth_controller"
	"github.com/gamio/venue-booking/controllers/booking_controller"
	"github.com/gamio/venue-booking/controllers/payment_controller"
	"github.com/gamio/venue-booking/controllers/slot_controller"
	"github.com/gamio/venue-booking/controllers/venue_controller"
	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/middlewares/cors"
	logger_middleware "github.com/gamio/venue-booking/middlewares/logger"
	"github.com/gamio/venue-booking/routes"
	"github.com/gamio/venue-booking/services/payments"
	"github.com/gamio/venue-booking/services/reservation"
	"github.com/gamio/venue-booking/services/slotgen"
	"github.com/gamio/venue-booking/storage/postgres"
	"github.com/gamio/venue-booking/utils/mail"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	logger.InfoLogger.Info("Starting venue booking service")

	// The store is the only dependency worth dying for: Connect exits the
	// process when the database is unreachable.
	db.Connect()
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(ctx, db.DB); err != nil {
		logger.ErrorLogger.Errorf("Schema migration failed: %v", err)
		os.Exit(1)
	}

	store := postgres.New(db.DB)

	var mailer mail.Mailer
	if m, err := mail.NewSMTPMailer(); err == nil {
		mailer = m
	} else {
		logger.WarnLogger.Warnf("SMTP not configured, mail disabled: %v", err)
		mailer = mail.NoopMailer{}
	}

	var verifier clients.PaymentVerifier = clients.NoopVerifier{}
	if keyID := os.Getenv("RAZORPAY_KEY_ID"); keyID != "" {
		verifier = clients.NewRazorpayClient(keyID, os.Getenv("RAZORPAY_KEY_SECRET"))
	} else {
		logger.WarnLogger.Warn("RAZORPAY_KEY_ID not set, payment signature verification disabled")
	}

	generator := slotgen.NewGenerator(store)
	manager := reservation.NewManager(store)
	tracker := payments.NewTracker(store)

	manager.StartPurgeSweep(ctx, config.GetDurationEnv("PURGE_INTERVAL", time.Hour))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.CorsMiddleware())
	router.Use(logger_middleware.GinLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterAuthRoutes(router, auth_controller.NewAuthController(mailer))
	routes.RegisterVenueRoutes(router, venue_controller.NewVenueController(store))
	routes.RegisterSlotRoutes(router, slot_controller.NewSlotController(store, generator))
	routes.RegisterBookingRoutes(router, booking_controller.NewBookingController(manager, mailer))
	routes.RegisterPaymentRoutes(router, payment_controller.NewPaymentController(tracker, verifier))

	port := config.GetEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.InfoLogger.Infof("Listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Errorf("Server stopped: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.InfoLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Graceful shutdown failed: %v", err)
	}
	redisclient.CloseRedis()
}
