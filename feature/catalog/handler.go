package catalog

import (
	"catalog-sync/core/logger"
	"catalog-sync/feature/catalog/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog pipeline.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Post("/sync/:source", h.HandleSync)
	group.Get("/batches/:id", h.HandleGetBatch)
	group.Get("/products/:id", h.HandleGetProduct)
}

// HandleSync triggers a full sync run against the named supplier and returns
// the run summary.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	source := c.Params("source")
	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.SyncFromSource(c.Context(), source)
	if err != nil {
		l.Error("Sync run could not start", zap.String("source", source), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// HandleGetBatch returns one staging batch with its items.
func (h *Handler) HandleGetBatch(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid batch id",
		})
	}
	l := logger.WithRayID(h.service.logger, c)

	batch, err := h.service.GetBatch(c.Context(), uint64(id))
	if err != nil {
		l.Warn("Batch lookup failed", zap.Int("batch_id", id), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "batch not found",
		})
	}

	return c.JSON(batch)
}

// productResponse is the product detail payload.
type productResponse struct {
	Product    *models.Product           `json:"product"`
	Variations []models.ProductVariation `json:"variations"`
}

// HandleGetProduct returns one product with its variations.
func (h *Handler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid product id",
		})
	}
	l := logger.WithRayID(h.service.logger, c)

	product, variations, err := h.service.GetProduct(c.Context(), uint64(id))
	if err != nil {
		l.Warn("Product lookup failed", zap.Int("product_id", id), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "product not found",
		})
	}

	return c.JSON(productResponse{Product: product, Variations: variations})
}
