package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"iotplatform-backend/internal/devices"
	"iotplatform-backend/internal/documents"
	"iotplatform-backend/internal/generation"
	"iotplatform-backend/internal/maintenance"
	"iotplatform-backend/internal/notify"
	"iotplatform-backend/internal/reconcile"
	"iotplatform-backend/internal/rules"
	"iotplatform-backend/internal/safety"
	"iotplatform-backend/internal/server"
	"iotplatform-backend/internal/shared/config"
	"iotplatform-backend/internal/shared/storage/db"
	"iotplatform-backend/internal/shared/storage/object"
	localstore "iotplatform-backend/internal/shared/storage/object/local"
	s3store "iotplatform-backend/internal/shared/storage/object/s3"
	"iotplatform-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	DevicesRepo     devices.Repo
	UsersRepo       users.Repo
	DocumentsRepo   documents.Repo
	MaintenanceRepo maintenance.Repo
	RulesRepo       rules.Repo
	SafetyRepo      safety.Repo

	DevicesService     *devices.Service
	UsersService       *users.Service
	DocumentsService   *documents.Service
	GenerationService  *generation.Service
	MaintenanceService *maintenance.Service
	ReconcileService   *reconcile.Service
	Notifier           *notify.Emitter

	DeviceHandler      *devices.Handler
	UserHandler        *users.Handler
	DocumentHandler    *documents.Handler
	GenerationHandler  *generation.Handler
	ReconcileHandler   *reconcile.Handler
	MaintenanceHandler *maintenance.Handler
	RulesHandler       *rules.Handler
	SafetyHandler      *safety.Handler
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		DeviceHandler:      app.DeviceHandler,
		UserHandler:        app.UserHandler,
		DocumentHandler:    app.DocumentHandler,
		GenerationHandler:  app.GenerationHandler,
		ReconcileHandler:   app.ReconcileHandler,
		MaintenanceHandler: app.MaintenanceHandler,
		RulesHandler:       app.RulesHandler,
		SafetyHandler:      app.SafetyHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.DevicesRepo = &devices.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.MaintenanceRepo = &maintenance.PGRepo{DB: app.DB}
		app.RulesRepo = &rules.PGRepo{DB: app.DB}
		app.SafetyRepo = &safety.PGRepo{DB: app.DB}
	} else {
		app.DevicesRepo = devices.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.MaintenanceRepo = maintenance.NewMemoryRepo()
		app.RulesRepo = rules.NewMemoryRepo()
		app.SafetyRepo = safety.NewMemoryRepo()
	}

	app.Notifier = &notify.Emitter{}
	if gate := notify.NewHTTPGate(app.Config.NotifyGateURL, app.Config.NotifyTimeout); gate != nil {
		app.Notifier.Gate = gate
	}

	docIntel, err := generation.NewClient(app.Config.DocIntelBaseURL, app.Config.DocIntelTimeout)
	if err != nil {
		return err
	}

	app.DevicesService = &devices.Service{Repo: app.DevicesRepo}
	app.UsersService = users.NewService(app.UsersRepo)
	app.DocumentsService = &documents.Service{
		Store:      app.Store,
		Repo:       app.DocumentsRepo,
		Forwarder:  docIntel,
		StaleAfter: app.Config.StaleProcessingAfter,
	}
	app.GenerationService = &generation.Service{
		Docs:   app.DocumentsRepo,
		Client: docIntel,
	}
	app.MaintenanceService = &maintenance.Service{
		Repo:    app.MaintenanceRepo,
		Devices: app.DevicesService,
		Users:   app.UsersService,
		Notify:  app.Notifier,
	}
	app.ReconcileService = reconcile.NewService(
		app.DocumentsRepo,
		app.MaintenanceService,
		app.RulesRepo,
		app.SafetyRepo,
		app.Notifier,
	)

	app.DeviceHandler = devices.NewHandler(app.DevicesService)
	app.UserHandler = users.NewHandler(app.UsersService)
	app.DocumentHandler = documents.NewHandler(app.DocumentsService)
	app.GenerationHandler = generation.NewHandler(app.GenerationService)
	app.ReconcileHandler = reconcile.NewHandler(app.ReconcileService, app.Config.CallbackOrgID)
	app.MaintenanceHandler = maintenance.NewHandler(app.MaintenanceService, app.Config.UpcomingWindowDays)
	app.RulesHandler = rules.NewHandler(app.RulesRepo)
	app.SafetyHandler = safety.NewHandler(app.SafetyRepo)

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
