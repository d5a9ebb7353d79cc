package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/chats"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/llm"
	openaiclient "docchat-backend/internal/llm/openai"
	"docchat-backend/internal/memory"
	"docchat-backend/internal/qa"
	"docchat-backend/internal/queue"
	"docchat-backend/internal/retrieval"
	"docchat-backend/internal/services/health"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/server"
	"docchat-backend/internal/shared/storage/db"
	"docchat-backend/internal/shared/storage/object"
	localstore "docchat-backend/internal/shared/storage/object/local"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  *queue.Queue

	DocumentsRepo documents.Repo
	ChatsRepo     chats.Repo

	DocumentsService *documents.Service
	Processor        *documents.Processor
	ChatsService     *chats.Service
	Engine           *qa.Engine
	MemoryStore      *memory.Store
	IndexCache       retrieval.IndexCache

	DocumentsHandler *documents.Handler
	ChatsHandler     *chats.Handler
}

// Overrides lets tests swap external collaborators before wiring.
type Overrides struct {
	LLM      llm.Client
	Embedder llm.Embedder
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, Overrides{})
}

// BuildWith prepares dependencies with the given overrides applied.
func BuildWith(cfg config.Config, ov Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  localstore.New(cfg.LocalStoreDir),
	}

	if err := buildServices(app, ov); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		DocumentsHandler: app.DocumentsHandler,
		ChatsHandler:     app.ChatsHandler,
		Health:           health.NewService(),
	})

	return app, nil
}

// Close drains the processing queue and releases the database pool.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultServerOptions())
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildServices(app *App, ov Overrides) error {
	cfg := app.Config

	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.ChatsRepo = &chats.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.ChatsRepo = chats.NewMemoryRepo()
	}

	llmClient, embedder, err := buildProviders(cfg, ov)
	if err != nil {
		return err
	}

	app.MemoryStore = memory.NewStore(cfg.MemoryBudget)
	app.IndexCache = retrieval.NewMemoryCache()

	app.Engine = &qa.Engine{
		LLM:          llmClient,
		Embedder:     embedder,
		Memory:       app.MemoryStore,
		Cache:        app.IndexCache,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		TopK:         cfg.RetrievalTopK,
	}

	app.Processor = &documents.Processor{
		Repo:        app.DocumentsRepo,
		Store:       app.Store,
		Invalidator: app.IndexCache,
	}
	app.Queue = queue.New(app.Processor.Handle, 2)

	app.DocumentsService = &documents.Service{
		Repo:  app.DocumentsRepo,
		Store: app.Store,
		Queue: app.Queue,
	}
	app.ChatsService = &chats.Service{
		Repo:      app.ChatsRepo,
		Documents: app.DocumentsRepo,
		Engine:    app.Engine,
	}

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.ChatsHandler = chats.NewHandler(app.ChatsService)
	return nil
}

func buildProviders(cfg config.Config, ov Overrides) (llm.Client, llm.Embedder, error) {
	llmClient := ov.LLM
	embedder := ov.Embedder
	if llmClient != nil && embedder != nil {
		return llmClient, embedder, nil
	}

	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		if !isDevLike(cfg.Env) {
			return nil, nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		log.Printf("bootstrap: OPENAI_API_KEY empty; queries will fail until configured")
		if llmClient == nil {
			llmClient = llm.PlaceholderClient{}
		}
		if embedder == nil {
			embedder = llm.PlaceholderEmbedder{}
		}
		return llmClient, embedder, nil
	}

	if llmClient == nil {
		client, err := openaiclient.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, 0)
		if err != nil {
			return nil, nil, err
		}
		llmClient = client
	}
	if embedder == nil {
		emb, err := openaiclient.NewEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		embedder = emb
	}
	return llmClient, embedder, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
