package api

import (
	"net/http"

	"listing-manager/logging"
)

func BulkStatusHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireSession(w, r, d.Config.JWT.Secret); !ok {
			return
		}
		writeJSON(w, http.StatusOK, d.Reporter.Status())
	}
}

func ErrorLogHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireSession(w, r, d.Config.JWT.Secret)
		if !ok {
			return
		}
		content, found, err := d.ErrorLog.Read()
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			content = logging.NoErrorsYet
		}
		d.AccessLog.Write("[ERROR_LOG] user=" + claims.Subject)
		writeJSON(w, http.StatusOK, map[string]string{"log": content})
	}
}
