// Pacote health expõe as sondas de liveness e readiness da API e do worker.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sonda verifica uma dependência; erro significa indisponível.
type Sonda func(ctx context.Context) error

type dependencia struct {
	nome  string
	sonda Sonda
}

type Checker struct {
	deps    []dependencia
	timeout time.Duration
}

// NewChecker registra Postgres e Redis quando informados; nil pula a checagem.
func NewChecker(db *sql.DB, rdb *redis.Client) *Checker {
	c := &Checker{timeout: 2 * time.Second}
	if db != nil {
		c.Registrar("database", db.PingContext)
	}
	if rdb != nil {
		c.Registrar("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return c
}

func (c *Checker) Registrar(nome string, sonda Sonda) {
	c.deps = append(c.deps, dependencia{nome: nome, sonda: sonda})
}

type relatorio struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder(w, http.StatusOK, relatorio{Status: "ok"})
	}
}

// ReadyHandler consulta todas as dependências, sem parar na primeira falha.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		defer cancel()

		rel := relatorio{Status: "ok", Checks: make(map[string]string, len(c.deps))}
		status := http.StatusOK
		for _, dep := range c.deps {
			if err := dep.sonda(ctx); err != nil {
				rel.Checks[dep.nome] = "unavailable"
				rel.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			rel.Checks[dep.nome] = "ok"
		}

		responder(w, status, rel)
	}
}

func responder(w http.ResponseWriter, status int, body relatorio) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
