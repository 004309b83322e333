package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"listing-manager/auth"
)

func LoginHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
			d.LoginLog.Write("LOGIN FAIL (bad json)")
			return
		}

		isAdmin, err := d.Auth.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUnknownUser):
				d.LoginLog.Write("LOGIN FAIL (no user) user=" + req.Username)
			case errors.Is(err, auth.ErrWrongPassword):
				d.LoginLog.Write("LOGIN FAIL (wrong pass) user=" + req.Username)
			default:
				d.LoginLog.Write("LOGIN FAIL (backend) user=" + req.Username + " error=" + err.Error())
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}

		tokenString, err := auth.GenerateJWT(d.Config.JWT.Secret, req.Username, isAdmin, d.Config.JWT.ExpirationMinutes)
		if err != nil {
			d.LoginLog.Write("LOGIN FAIL (jwt error) user=" + req.Username)
			writeError(w, err)
			return
		}
		d.LoginLog.Write("LOGIN OK user=" + req.Username)
		writeJSON(w, http.StatusOK, map[string]any{"token": tokenString, "admin": isAdmin})
	}
}
