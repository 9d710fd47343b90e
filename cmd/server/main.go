package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intervue/internal/bank"
	"intervue/internal/cache"
	"intervue/internal/config"
	"intervue/internal/extract"
	"intervue/internal/repository"
	"intervue/internal/service"
	"intervue/internal/transport/rest"
	"intervue/internal/transport/ws"
	"intervue/internal/vision"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Server] No .env file found, using environment variables")
	}

	cfg := config.Load()
	aiCfg := config.DefaultAIConfig()
	if !aiCfg.IsEnabled() {
		log.Println("[Server] OPENAI_API_KEY not set; AI features run on local fallbacks")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("[Server] MongoDB connect failed: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("[Server] MongoDB ping failed: %v", err)
	}
	db := mongoClient.Database(cfg.MongoDB)
	log.Printf("[Server] Connected to MongoDB database %q", cfg.MongoDB)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("[Server] Redis ping failed: %v", err)
	}
	log.Printf("[Server] Connected to Redis at %s", cfg.RedisAddr)

	extractor := extract.NewRegistry()
	questionBank := bank.New()
	loadQuestionBank(questionBank, extractor, bank.CategoryMBA, cfg.MBABankPDF)
	loadQuestionBank(questionBank, extractor, bank.CategoryBank, cfg.BankPDF)

	aiClient := service.NewOpenAIClientWithConfig(aiCfg)

	sessionCache := cache.NewSessionCache(redisClient)
	visualCache := cache.NewVisualCache(redisClient)
	evalRepo := repository.NewEvaluationRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)

	authService := service.NewAuthService()
	generator := service.NewGeneratorService(aiClient, questionBank)
	evaluator := service.NewEvaluatorService(aiClient)
	visualService := service.NewVisualService(visualCache, vision.NullDetector{})
	speechService := service.NewSpeechService(aiClient)
	interviewService := service.NewInterviewService(questionBank, extractor, generator, evaluator, visualService,
		sessionCache, evalRepo, snapshotRepo)

	hub := ws.NewHub()
	interviewService.SetBroadcaster(hub)
	visualService.SetBroadcaster(hub)

	router := rest.NewRouter(rest.Deps{
		Auth:       authService,
		Interviews: interviewService,
		Visual:     visualService,
		Speech:     speechService,
		Hub:        hub,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[Server] Listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] Listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Server] Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Printf("[Server] MongoDB disconnect error: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("[Server] Redis close error: %v", err)
	}
	log.Println("[Server] Stopped")
}

// loadQuestionBank extracts the category's question document and loads
// the bank from it; any failure falls back to the built-in lists.
func loadQuestionBank(b *bank.Bank, extractor *extract.Registry, category, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Server] Question document %s unavailable (%v), using built-in %s questions", path, err, category)
		b.InstallFallback(category)
		return
	}
	text, err := extractor.Extract(path, data)
	if err != nil || !b.Load(text, category) {
		log.Printf("[Server] Question document %s not parseable, using built-in %s questions", path, category)
		b.InstallFallback(category)
		return
	}
	log.Printf("[Server] Loaded %s question bank from %s", category, path)
}
