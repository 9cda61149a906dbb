package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyayalaya/casefile/internal/apperr"
	"github.com/nyayalaya/casefile/internal/cache"
	"github.com/nyayalaya/casefile/internal/models"
)

const userCacheTTL = 30 * time.Second

type Service struct {
	db    *pgxpool.Pool
	cache *cache.Cache
}

// NewService builds the user lookup service. cache may be nil, in which
// case every lookup hits the database.
func NewService(db *pgxpool.Pool, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	key := fmt.Sprintf("user:%s", id)
	if s.cache != nil {
		var cached models.User
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	var u models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, org_id, role, email, password_hash, full_name, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.OrgID, &u.Role, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if err != nil {
		return nil, apperr.FromDB("get user", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, u, userCacheTTL)
	}
	return &u, nil
}

type CreateUserRequest struct {
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash"`
	FullName     string      `json:"full_name"`
	Role         models.Role `json:"role"`
}

// CreateUser provisions a user inside orgID. The org id is forced through
// DefaultOrgID so the self-owned-org invariant holds when orgID is nil.
func (s *Service) CreateUser(ctx context.Context, orgID uuid.UUID, req CreateUserRequest) (*models.User, error) {
	if req.Email == "" {
		return nil, apperr.New(apperr.ErrValidation, "email is required")
	}
	if !req.Role.Valid() {
		return nil, apperr.New(apperr.ErrValidation, "role must be admin or lawyer")
	}

	userID := uuid.New()
	var u models.User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (id, org_id, role, email, password_hash, full_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, org_id, role, email, password_hash, full_name, created_at`,
		userID, models.DefaultOrgID(userID, orgID), req.Role, req.Email, req.PasswordHash, req.FullName,
	).Scan(&u.ID, &u.OrgID, &u.Role, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if err != nil {
		return nil, apperr.FromDB("create user", err)
	}
	return &u, nil
}
