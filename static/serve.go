package static

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"listing-manager/config"
	"listing-manager/logging"
)

// RegisterStaticHandler serves the dashboard from server.static, falling
// back to server.static_default. Only whitelisted names are served and
// {key} placeholders are replaced by server.template_vars.
func RegisterStaticHandler(mux *http.ServeMux, cfg *config.Config, accessLogger *logging.Logger) {
	mux.Handle("GET /", Handler(cfg, accessLogger))
}

func Handler(cfg *config.Config, accessLogger *logging.Logger) http.HandlerFunc {
	staticDir := cfg.Server.Static
	if staticDir == "" {
		staticDir = "./static"
	}
	staticDefault := cfg.Server.StaticDefault
	if staticDefault == "" {
		staticDefault = "./static"
	}
	allowed := cfg.Server.StaticAllowed

	return func(w http.ResponseWriter, r *http.Request) {
		reqPath := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		if !isAllowedWildcard(reqPath, allowed) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			accessLogger.Write("[STATIC_REFUSED] " + reqPath)
			return
		}

		for _, dir := range []string{staticDir, staticDefault} {
			filePath := filepath.Join(dir, reqPath)
			content, err := os.ReadFile(filePath)
			if err != nil {
				continue
			}
			final := applyTemplateMacros(string(content), cfg.Server.TemplateVars)
			w.Header().Set("Content-Type", mime.TypeByExtension(filepath.Ext(filePath)))
			w.Write([]byte(final))
			accessLogger.Write("[STATIC_OK] " + reqPath + " (" + dir + ")")
			return
		}

		http.NotFound(w, r)
		accessLogger.Write("[STATIC_NOTFOUND] " + reqPath)
	}
}

func applyTemplateMacros(content string, vars map[string]string) string {
	for key, val := range vars {
		placeholder := "{" + key + "}"
		content = strings.ReplaceAll(content, placeholder, val)
	}
	return content
}

// isAllowedWildcard matches fileName against the whitelist patterns.
func isAllowedWildcard(fileName string, allowed []string) bool {
	for _, pattern := range allowed {
		if matched, _ := filepath.Match(pattern, fileName); matched {
			return true
		}
		// "*/x.js" also matches x.js at any depth
		if strings.HasPrefix(pattern, "*/") {
			suffix := pattern[2:]
			if strings.HasSuffix(fileName, suffix) {
				return true
			}
		}
	}
	return false
}
