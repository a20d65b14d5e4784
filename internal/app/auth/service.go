// Pacote auth autentica administradores e emite o token usado no grupo /admin.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcelojr/rifa-pix/internal/domain"
	"github.com/marcelojr/rifa-pix/internal/platform/ids"
)

var (
	ErrCredenciaisInvalidas = errors.New("credenciais invalidas")
	ErrTokenInvalido        = errors.New("token invalido")
	ErrSegredoAusente       = errors.New("segredo do token nao configurado")
)

const (
	TTLPadrao = 8 * time.Hour
	emissor   = "rifa-pix"
)

type Service struct {
	admins  domain.AdminRepository
	segredo []byte
	ttl     time.Duration
	clock   domain.Clock
	ids     *ids.Generator
	logger  *slog.Logger
	// custo do bcrypt; os testes usam bcrypt.MinCost.
	custo int
}

func NewService(admins domain.AdminRepository, segredo string, ttl time.Duration, clock domain.Clock, idsGen *ids.Generator, logger *slog.Logger) (*Service, error) {
	if strings.TrimSpace(segredo) == "" {
		return nil, ErrSegredoAusente
	}
	if ttl <= 0 {
		ttl = TTLPadrao
	}
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		admins:  admins,
		segredo: []byte(segredo),
		ttl:     ttl,
		clock:   clock,
		ids:     idsGen,
		logger:  logger,
		custo:   bcrypt.DefaultCost,
	}, nil
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Login nunca diferencia usuário inexistente de senha errada na resposta.
func (s *Service) Login(ctx context.Context, username, senha string) (domain.Sessao, error) {
	admin, err := s.admins.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Sessao{}, ErrCredenciaisInvalidas
		}
		return domain.Sessao{}, fmt.Errorf("auth: buscar admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.SenhaHash), []byte(senha)); err != nil {
		return domain.Sessao{}, ErrCredenciaisInvalidas
	}

	agora := s.clock.Agora()
	expira := agora.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(admin.ID),
			Issuer:    emissor,
			IssuedAt:  jwt.NewNumericDate(agora),
			ExpiresAt: jwt.NewNumericDate(expira),
		},
	})
	assinado, err := token.SignedString(s.segredo)
	if err != nil {
		return domain.Sessao{}, fmt.Errorf("auth: assinar token: %w", err)
	}

	s.logger.Info("admin autenticado", "admin", admin.ID)
	return domain.Sessao{Token: assinado, ExpiraEm: expira}, nil
}

func (s *Service) Verificar(token string) (domain.Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.segredo, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(emissor),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Agora),
	)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalido, err)
	}
	if c.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: sem subject", ErrTokenInvalido)
	}

	return domain.Principal{
		AdminID:  domain.AdminID(c.Subject),
		Username: c.Username,
		ExpiraEm: c.ExpiresAt.Time,
	}, nil
}

// SemearAdmin cria o admin inicial quando ainda não existe; chamado no boot da API.
func (s *Service) SemearAdmin(ctx context.Context, username, senha string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || senha == "" {
		return false, nil
	}

	_, err := s.admins.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("auth: semear admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(senha), s.custo)
	if err != nil {
		return false, fmt.Errorf("auth: hash da senha: %w", err)
	}

	admin := domain.AdminUsuario{
		ID:        domain.AdminID(s.ids.NewAt(s.clock.Agora())),
		Username:  username,
		SenhaHash: string(hash),
		CriadoEm:  s.clock.Agora(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		// Outra instância semeou ao mesmo tempo.
		if errors.Is(err, domain.ErrDuplicado) {
			return false, nil
		}
		return false, fmt.Errorf("auth: semear admin: %w", err)
	}

	s.logger.Info("admin inicial criado", "username", username)
	return true, nil
}

var _ domain.AuthService = (*Service)(nil)
