package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"listing-manager/marketplace"
)

// InventoryCache keeps category searches and condition lists, which change
// rarely, for a configurable time.
type InventoryCache struct {
	categories *ttlcache.Cache[string, []marketplace.Category]
	conditions *ttlcache.Cache[string, []marketplace.Condition]
}

func NewInventoryCache(ttl time.Duration) *InventoryCache {
	return &InventoryCache{
		categories: ttlcache.New(
			ttlcache.WithTTL[string, []marketplace.Category](ttl),
			ttlcache.WithDisableTouchOnHit[string, []marketplace.Category](),
		),
		conditions: ttlcache.New(
			ttlcache.WithTTL[string, []marketplace.Condition](ttl),
			ttlcache.WithDisableTouchOnHit[string, []marketplace.Condition](),
		),
	}
}

func CategoriesHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireCredential(w, r, d.Config.JWT.Secret)
		if !ok {
			return
		}
		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if query == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
			return
		}
		key := strings.ToLower(query)
		if item := d.Inventory.categories.Get(key); item != nil {
			writeJSON(w, http.StatusOK, map[string]any{"categories": item.Value()})
			return
		}
		cats, err := d.Marketplace.GetSuggestedCategories(r.Context(), claims.Credential, query)
		if err != nil {
			writeError(w, err)
			return
		}
		d.Inventory.categories.Set(key, cats, ttlcache.DefaultTTL)
		writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
	}
}

func ConditionsHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireCredential(w, r, d.Config.JWT.Secret)
		if !ok {
			return
		}
		categoryID := strings.TrimSpace(r.PathValue("categoryId"))
		if categoryID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "categoryId is required"})
			return
		}
		if item := d.Inventory.conditions.Get(categoryID); item != nil {
			writeJSON(w, http.StatusOK, map[string]any{"conditions": item.Value()})
			return
		}
		conds, err := d.Marketplace.GetCategoryConditions(r.Context(), claims.Credential, categoryID)
		if err != nil {
			writeError(w, err)
			return
		}
		d.Inventory.conditions.Set(categoryID, conds, ttlcache.DefaultTTL)
		writeJSON(w, http.StatusOK, map[string]any{"conditions": conds})
	}
}
