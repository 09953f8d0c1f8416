package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/pkg/utils"
)

// Repository handles identity persistence: users, profiles, tenants,
// refresh tokens and email verifications.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, COALESCE(password_hash,''), name, COALESCE(phone_number,''), is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.PhoneNumber, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail returns a user by email, or pgx.ErrNoRows.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetUserByID returns a user by id.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

const profileColumns = `id, user_id, role, name, tenant_id, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(&p.ID, &p.UserID, &p.Role, &p.Name, &p.TenantID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByID returns a profile by id.
func (r *Repository) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, id))
}

// GetFirstProfile returns the user's oldest profile. Login and refresh pin
// this selection into the token claims, so later requests act under one
// explicit profile rather than re-picking.
func (r *Repository) GetFirstProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`, userID))
}

// GetTenant returns a tenant by id.
func (r *Repository) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, created_by, created_at, updated_at FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadPrincipal re-resolves the claimed identity from storage. Both rows
// must still exist and the profile must belong to the user; this is what
// invalidates sessions of deleted accounts.
func (r *Repository) LoadPrincipal(ctx context.Context, userID, profileID uuid.UUID) (*Principal, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := r.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != user.ID {
		return nil, pgx.ErrNoRows
	}
	return &Principal{
		UserID:        user.ID,
		UserProfileID: profile.ID,
		Email:         user.Email,
		Role:          profile.Role,
		TenantID:      profile.TenantID,
	}, nil
}

// SignupResult is the outcome of a signup transaction.
type SignupResult struct {
	User    *models.User
	Profile *models.UserProfile
	Tenant  *models.Tenant // nil for CLIENT signups
}

// CreateSignup transactionally creates a user, a tenant when the role is
// ENTERPRISE, and the role profile bound to that tenant. Nothing persists if
// any step fails.
func (r *Repository) CreateSignup(ctx context.Context, email, name, passwordHash string, role models.Role, verified bool) (*SignupResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var u models.User
	err = tx.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, name, is_verified)
		 VALUES (gen_random_uuid(), $1, NULLIF($2,''), $3, $4)
		 RETURNING `+userColumns, email, passwordHash, name, verified).
		Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.PhoneNumber, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var tenant *models.Tenant
	var tenantID *uuid.UUID
	if role == models.RoleEnterprise {
		var t models.Tenant
		err = tx.QueryRow(ctx,
			`INSERT INTO tenants (id, name, slug, created_by)
			 VALUES (gen_random_uuid(), $1, $2, $3)
			 RETURNING id, name, slug, created_by, created_at, updated_at`,
			name+"'s Studio", utils.TenantSlug(name), u.ID).
			Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		tenant = &t
		tenantID = &t.ID
	}

	var p models.UserProfile
	err = tx.QueryRow(ctx,
		`INSERT INTO user_profiles (id, user_id, role, name, tenant_id, created_by)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4, $1)
		 RETURNING `+profileColumns, u.ID, string(role), name, tenantID).
		Scan(&p.ID, &p.UserID, &p.Role, &p.Name, &p.TenantID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &SignupResult{User: &u, Profile: &p, Tenant: tenant}, nil
}

// CreateRefreshToken persists a refresh token row.
func (r *Repository) CreateRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, token, user_id, expires_at)
		 VALUES (gen_random_uuid(), $1, $2, $3)`, token, userID, expiresAt)
	return err
}

// GetRefreshToken returns a stored refresh token row, or pgx.ErrNoRows.
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.pool.QueryRow(ctx,
		`SELECT id, token, user_id, expires_at, created_at FROM refresh_tokens WHERE token = $1`, token).
		Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteRefreshToken revokes a refresh token. Deleting an unknown token is
// not an error.
func (r *Repository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

// CreateVerification stores a pending email-verification token.
func (r *Repository) CreateVerification(ctx context.Context, email, token string, role models.Role, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO email_verifications (id, email, token, role, expires_at)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4)`, email, token, string(role), expiresAt)
	return err
}

// ConsumeVerification atomically marks an unused, unexpired verification
// token as used and returns it. pgx.ErrNoRows means invalid, expired or
// already consumed.
func (r *Repository) ConsumeVerification(ctx context.Context, token string) (*models.EmailVerification, error) {
	var v models.EmailVerification
	err := r.pool.QueryRow(ctx,
		`UPDATE email_verifications
		 SET used_at = NOW()
		 WHERE token = $1 AND used_at IS NULL AND expires_at > NOW()
		 RETURNING id, email, token, role, expires_at, used_at, created_at`, token).
		Scan(&v.ID, &v.Email, &v.Token, &v.Role, &v.ExpiresAt, &v.UsedAt, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
