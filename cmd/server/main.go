package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retailops/passreset/internal/api/handlers"
	"github.com/retailops/passreset/internal/config"
	"github.com/retailops/passreset/internal/db"
	resethandlers "github.com/retailops/passreset/internal/handlers"
	"github.com/retailops/passreset/internal/repository"
	"github.com/retailops/passreset/internal/service"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log.Println("✓ Configuration loaded")

	// 2. Initialize database connection
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer pool.Close()

	// 3. Initialize layers
	userRepo := repository.NewUserRepository(pool)
	codeRepo := repository.NewResetCodeRepository(pool)

	mailer, err := service.NewSMTPMailer(service.SMTPOptions{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		TLS:      cfg.SMTPTLS,
	})
	if err != nil {
		log.Fatal("Failed to configure mailer:", err)
	}

	policy := service.DefaultResetPolicy()
	if cfg.ResetCodeTTLMinutes > 0 {
		policy.CodeTTL = time.Duration(cfg.ResetCodeTTLMinutes) * time.Minute
	}
	if cfg.PasswordMinLength > 0 {
		policy.PasswordMinLength = cfg.PasswordMinLength
	}

	resolver := service.NewIdentityResolver(userRepo)
	resetService := service.NewResetService(resolver, codeRepo, userRepo, mailer, policy)

	resetHandler := resethandlers.NewResetHandler(resetService)
	healthHandler := handlers.NewHealthHandler(pool)

	// 4. Setup Gin router
	router := gin.Default()
	healthHandler.RegisterRoutes(router)
	resetHandler.RegisterRoutes(router)

	// 5. Background housekeeping: physically drop long-dead code rows.
	// The expired flag stays the logical marker; this only trims the table.
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go runCleanup(cleanupCtx, codeRepo)

	// 6. Start server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Println("🚀 Server starting on", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")
	stopCleanup()

	// Graceful shutdown with 5 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("✓ Server exited")
}

// runCleanup deletes reset codes at least a day past expiry or redemption,
// once an hour. Rows must outlive their expiry long enough for lazy expiry
// marking to still find them.
func runCleanup(ctx context.Context, codeRepo *repository.ResetCodeRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := codeRepo.DeleteExpired(ctx, 24*time.Hour); err != nil {
				log.Printf("cleanup: failed to delete expired reset codes: %v", err)
			} else if n > 0 {
				log.Printf("cleanup: deleted %d expired reset codes", n)
			}
			if n, err := codeRepo.DeleteRedeemed(ctx, 24*time.Hour); err != nil {
				log.Printf("cleanup: failed to delete redeemed reset codes: %v", err)
			} else if n > 0 {
				log.Printf("cleanup: deleted %d redeemed reset codes", n)
			}
		}
	}
}
