package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"listing-manager/auth"
)

// TokenHandler binds a marketplace token to the session. The token is
// checked with a GetUser call, then a new JWT carrying it is issued.
func TokenHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireSession(w, r, d.Config.JWT.Secret)
		if !ok {
			return
		}
		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "token is required"})
			return
		}
		credential := strings.TrimSpace(req.Token)

		user, err := d.Marketplace.GetUser(r.Context(), credential)
		if err != nil {
			d.LoginLog.Write("TOKEN FAIL user=" + claims.Subject + " error=" + err.Error())
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid token", Details: err.Error()})
			return
		}

		claims.Credential = credential
		claims.MarketplaceUser = user.UserID
		signed, err := auth.SignClaims(d.Config.JWT.Secret, claims, d.Config.JWT.ExpirationMinutes)
		if err != nil {
			writeError(w, err)
			return
		}
		d.LoginLog.Write("TOKEN OK user=" + claims.Subject + " marketplace_user=" + user.UserID)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   signed,
			"user":    user,
		})
	}
}

func AuthStatusHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.ExtractClaims(r, d.Config.JWT.Secret)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "session": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated":   claims.HasCredential(),
			"session":         true,
			"user":            claims.Subject,
			"admin":           claims.Admin,
			"marketplaceUser": claims.MarketplaceUser,
		})
	}
}
