package api

import (
	"context"
	"net/http"

	"listing-manager/auth"
	"listing-manager/config"
	"listing-manager/listing"
	"listing-manager/logging"
	"listing-manager/marketplace"
	"listing-manager/worker"
)

// Marketplace is the part of the trading client the handlers call.
type Marketplace interface {
	AddItem(ctx context.Context, credential string, payload []byte) (*marketplace.AddItemResult, error)
	GetUser(ctx context.Context, credential string) (*marketplace.User, error)
	GetSuggestedCategories(ctx context.Context, credential, query string) ([]marketplace.Category, error)
	GetCategoryConditions(ctx context.Context, credential, categoryID string) ([]marketplace.Condition, error)
	GetMyeBaySelling(ctx context.Context, credential string, page int) (*marketplace.ActiveList, error)
}

// Deps is everything the handlers share.
type Deps struct {
	Config      *config.Config
	Auth        *auth.Authenticator
	Processor   *worker.Processor
	Reporter    *worker.Reporter
	ErrorLog    *logging.ErrorLog
	Marketplace Marketplace
	Serializer  *listing.Serializer
	Inventory   *InventoryCache

	AccessLog *logging.Logger
	LoginLog  *logging.Logger
}

func RegisterHandlers(mux *http.ServeMux, d *Deps) {
	mux.HandleFunc("POST /api/login", LoginHandler(d))
	mux.HandleFunc("POST /api/auth/token", TokenHandler(d))
	mux.HandleFunc("GET /api/auth/status", AuthStatusHandler(d))

	mux.HandleFunc("POST /api/bulk/upload", BulkUploadHandler(d))
	mux.HandleFunc("GET /api/bulk/status", BulkStatusHandler(d))
	mux.HandleFunc("GET /api/bulk/error-log", ErrorLogHandler(d))
	mux.HandleFunc("GET /api/bulk/failed/export", FailedExportHandler(d))

	mux.HandleFunc("GET /api/listings", ListListingsHandler(d))
	mux.HandleFunc("POST /api/listings", CreateListingHandler(d))
	mux.HandleFunc("GET /api/inventory/categories", CategoriesHandler(d))
	mux.HandleFunc("GET /api/inventory/conditions/{categoryId}", ConditionsHandler(d))
}
