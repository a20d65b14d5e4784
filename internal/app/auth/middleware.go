package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marcelojr/rifa-pix/internal/domain"
)

type Verificador interface {
	Verificar(token string) (domain.Principal, error)
}

// Middleware exige "Authorization: Bearer <jwt>" e injeta o Principal no contexto.
func Middleware(v Verificador, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				naoAutorizado(w)
				return
			}
			principal, err := v.Verificar(token)
			if err != nil {
				logger.Warn("token admin rejeitado", "err", err, "path", r.URL.Path)
				naoAutorizado(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearer(header string) (string, bool) {
	prefixo, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(prefixo, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func naoAutorizado(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="rifa-pix admin"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "nao autorizado"})
}
