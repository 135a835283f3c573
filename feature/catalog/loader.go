package catalog

import (
	"time"

	"catalog-sync/core/queue"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/relsync"
	"catalog-sync/feature/catalog/staging"
	"catalog-sync/feature/catalog/supplier"
	"catalog-sync/feature/catalog/tasks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// Deps carries everything the catalog feature needs from the composition
// root.
type Deps struct {
	DB          *gorm.DB
	Archive     storage.Client
	Bucket      string
	Pool        *queue.Pool
	Registry    *supplier.Registry
	Tasks       []tasks.Task
	TaskTimeout time.Duration
	ItemWorkers int
	Logger      *zap.Logger
}

// NewFeature creates the catalog feature and wires its pipeline.
func NewFeature(deps Deps) *Feature {
	store := staging.NewStore(deps.DB, deps.Archive, deps.Bucket, deps.Logger)
	engine := relsync.NewEngine(deps.DB, deps.Logger)
	orch := NewOrchestrator(store, engine, deps.Pool, deps.Tasks, deps.TaskTimeout, deps.Logger)
	reaper := NewReaper(deps.DB, deps.Logger)
	svc := NewService(deps.DB, deps.Registry, store, orch, reaper, deps.ItemWorkers, deps.Logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Service exposes the wired sync service for CLI use.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "catalog"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
