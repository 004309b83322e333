package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"listing-manager/bulk"
	"listing-manager/listing"
)

// CreateListingHandler creates one listing synchronously from a JSON
// listing body, going through the same enrichment as bulk rows.
func CreateListingHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireCredential(w, r, d.Config.JWT.Secret)
		if !ok {
			return
		}
		var l listing.Listing
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
			return
		}
		if missing := l.MissingRequired(); len(missing) > 0 {
			writeError(w, &missingFieldsError{fields: missing})
			return
		}
		bulk.Enrich(&l)

		payload, err := d.Serializer.Render(&l, claims.Credential)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		res, err := d.Marketplace.AddItem(r.Context(), claims.Credential, payload)
		if err != nil {
			d.AccessLog.Write("[LISTING_FAIL] user=" + claims.Subject + " error=" + err.Error())
			writeError(w, err)
			return
		}
		d.AccessLog.Write("[LISTING_OK] user=" + claims.Subject + " item=" + res.ItemID)
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":    true,
			"itemId":     res.ItemID,
			"listingUrl": res.URL,
			"warnings":   res.Warnings,
		})
	}
}

// ListListingsHandler returns one page of the seller's active listings.
// ?page= is 1-based.
func ListListingsHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireCredential(w, r, d.Config.JWT.Secret)
		if !ok {
			return
		}
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "page must be a positive integer"})
				return
			}
			page = n
		}
		list, err := d.Marketplace.GetMyeBaySelling(r.Context(), claims.Credential, page)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"listings":     list.Listings,
			"page":         list.Page,
			"totalPages":   list.TotalPages,
			"totalEntries": list.TotalEntries,
		})
	}
}
