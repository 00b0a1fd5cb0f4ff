package services

import (
	"github.com/caelus-deploy/caelus/pkg/app"
	"github.com/caelus-deploy/caelus/pkg/cache"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/services/catalog/domain/repositories"
	"github.com/caelus-deploy/caelus/services/catalog/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the catalog bounded context.
type Services struct {
	Product  *ProductService
	Template *TemplateService
}

// New wires the catalog services with Postgres repositories, the outbox event
// bus and the Redis product cache from the Application container.
func New(a *app.Application) *Services {
	var productCache *cache.ProductCache
	if a.Redis != nil {
		productCache = cache.NewProductCache(a.Redis)
	}
	return NewWithRepositories(
		postgres.NewProductRepository(a.Db, a.EventBus),
		postgres.NewTemplateRepository(a.Db, a.EventBus),
		productCache,
		a.Logger,
	)
}

// NewWithRepositories wires the catalog services over arbitrary repositories.
// productCache may be nil.
func NewWithRepositories(
	products repositories.ProductRepository,
	templates repositories.TemplateRepository,
	productCache *cache.ProductCache,
	log logger.Logger,
) *Services {
	productSvc := NewProductService(products, productCache, log)
	return &Services{
		Product:  productSvc,
		Template: NewTemplateService(templates, productSvc, log),
	}
}
