package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"priya-cloud/notify"
	"priya-cloud/security"
	"priya-cloud/summarizer"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const VERSION = "0.1.0"

// HealthResponse is the payload of the health check endpoint.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	Service string `json:"service"`
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.Println("Starting Priya Cloud Server...")

	// Token storage: Redis when configured, local JSON file otherwise.
	tokenRepo := initTokenRepository()

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Fatal("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables are required")
	}
	redirectURL := getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/callback")

	googleClient := security.NewGoogleCalendarClient(clientID, clientSecret, redirectURL, tokenRepo)

	// Single fixed principal until a real identity system supplies one.
	principalID := getEnv("CALENDAR_PRINCIPAL_ID", "demo-user")

	persona := getEnv("ASSISTANT_NAME", "Priya")

	summarizerClient, err := summarizer.NewClientFromEnv()
	if err != nil {
		log.Fatalf("Failed to init summarizer: %v", err)
	}

	emailSender, err := notify.NewSendGridSenderFromEnv()
	if err != nil {
		log.Fatalf("Failed to init email sender: %v", err)
	}

	authHandler := NewGoogleAuthHandler(googleClient, principalID)
	calendarHandler := NewCalendarHandler(googleClient, principalID)
	webhookHandler := NewVapiWebhookHandler(summarizerClient, emailSender, persona)

	r := mux.NewRouter()

	r.HandleFunc("/healthz", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	authHandler.RegisterRoutes(r)
	calendarHandler.RegisterRoutes(r)
	webhookHandler.RegisterRoutes(r)

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + port,
		WriteTimeout: 180 * time.Second,
		ReadTimeout:  180 * time.Second,
	}

	log.Printf("Priya Cloud Server v%s starting on %s", VERSION, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// initTokenRepository picks the token storage backend: Redis when REDIS_URL
// is set, otherwise the flat JSON token file.
func initTokenRepository() security.TokenRepository {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		path := getEnv("REFRESH_TOKEN_STORAGE_PATH", "./refresh_tokens.json")
		log.Printf("Using file token storage at %s", path)
		return security.NewFileTokenRepository(path)
	}

	// Remove redis:// prefix if present
	if strings.HasPrefix(redisURL, "redis://") {
		redisURL = strings.TrimPrefix(redisURL, "redis://")
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis for token storage")
	return security.NewRedisTokenRepository(redisClient)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		OK:      true,
		Version: VERSION,
		Service: "priya-cloud",
	})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Priya Cloud API Server",
		"version": VERSION,
	})
}

// Helper function to get environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
