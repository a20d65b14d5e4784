package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/clock"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
	"github.com/marcelojr/rifa-pix/internal/platform/storage/postgres"
	"github.com/marcelojr/rifa-pix/internal/platform/storage/sqlitetest"
)

type authDeps struct {
	service *Service
	admins  *postgres.AdminRepository
	agora   time.Time
}

func newAuthDeps(t *testing.T) *authDeps {
	t.Helper()
	d := &authDeps{
		admins: postgres.NewAdminRepository(sqlitetest.Open(t)),
		agora:  time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(d.admins, "segredo-de-teste", time.Hour, clock.Func(func() time.Time { return d.agora }), ids.NewGenerator(), nil)
	require.NoError(t, err)
	svc.custo = bcrypt.MinCost
	d.service = svc
	return d
}

func TestNewService_SemSegredo_DeveFalhar(t *testing.T) {
	_, err := NewService(nil, "  ", time.Hour, clock.NewSystemClock(), nil, nil)

	assert.ErrorIs(t, err, ErrSegredoAusente)
}

func TestSemearAdmin_DeveCriarApenasUmaVez(t *testing.T) {
	deps := newAuthDeps(t)
	ctx := context.Background()

	criado, err := deps.service.SemearAdmin(ctx, "admin", "s3nha")
	require.NoError(t, err)
	assert.True(t, criado)

	criado, err = deps.service.SemearAdmin(ctx, "admin", "outra")
	require.NoError(t, err)
	assert.False(t, criado)

	admin, err := deps.admins.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.SenhaHash), []byte("s3nha")))
}

func TestSemearAdmin_SemCredenciais_NaoFazNada(t *testing.T) {
	deps := newAuthDeps(t)

	criado, err := deps.service.SemearAdmin(context.Background(), "", "")

	require.NoError(t, err)
	assert.False(t, criado)
}

func TestLogin_ComSenhaCorreta_DeveEmitirTokenVerificavel(t *testing.T) {
	deps := newAuthDeps(t)
	ctx := context.Background()
	_, err := deps.service.SemearAdmin(ctx, "admin", "s3nha")
	require.NoError(t, err)

	sessao, err := deps.service.Login(ctx, "admin", "s3nha")

	require.NoError(t, err)
	assert.NotEmpty(t, sessao.Token)
	assert.Equal(t, deps.agora.Add(time.Hour), sessao.ExpiraEm)

	principal, err := deps.service.Verificar(sessao.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", principal.Username)
	assert.NotEmpty(t, principal.AdminID)
}

func TestLogin_ComCredenciaisErradas_DeveRetornarErroGenerico(t *testing.T) {
	deps := newAuthDeps(t)
	ctx := context.Background()
	_, err := deps.service.SemearAdmin(ctx, "admin", "s3nha")
	require.NoError(t, err)

	_, errSenha := deps.service.Login(ctx, "admin", "errada")
	_, errUsuario := deps.service.Login(ctx, "ninguem", "s3nha")

	assert.ErrorIs(t, errSenha, ErrCredenciaisInvalidas)
	assert.ErrorIs(t, errUsuario, ErrCredenciaisInvalidas)
}

func TestVerificar_TokenExpirado_DeveFalhar(t *testing.T) {
	deps := newAuthDeps(t)
	ctx := context.Background()
	_, err := deps.service.SemearAdmin(ctx, "admin", "s3nha")
	require.NoError(t, err)
	sessao, err := deps.service.Login(ctx, "admin", "s3nha")
	require.NoError(t, err)

	deps.agora = deps.agora.Add(2 * time.Hour)
	_, err = deps.service.Verificar(sessao.Token)

	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestVerificar_AssinaturaDeOutroSegredo_DeveFalhar(t *testing.T) {
	deps := newAuthDeps(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "adm-1",
			Issuer:    emissor,
			ExpiresAt: jwt.NewNumericDate(deps.agora.Add(time.Hour)),
		},
	})
	assinado, err := token.SignedString([]byte("outro"))
	require.NoError(t, err)

	_, err = deps.service.Verificar(assinado)

	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestMiddleware(t *testing.T) {
	deps := newAuthDeps(t)
	ctx := context.Background()
	_, err := deps.service.SemearAdmin(ctx, "admin", "s3nha")
	require.NoError(t, err)
	sessao, err := deps.service.Login(ctx, "admin", "s3nha")
	require.NoError(t, err)

	var visto domain.Principal
	handler := Middleware(deps.service, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visto, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	casos := []struct {
		nome     string
		header   string
		esperado int
	}{
		{"sem header", "", http.StatusUnauthorized},
		{"esquema errado", "Basic abc", http.StatusUnauthorized},
		{"token invalido", "Bearer nao-e-jwt", http.StatusUnauthorized},
		{"token valido", "Bearer " + sessao.Token, http.StatusNoContent},
	}
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/x", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, c.esperado, rec.Code)
		})
	}
	assert.Equal(t, "admin", visto.Username)
}
