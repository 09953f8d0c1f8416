package invites

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fotofolio/backend/internal/access"
	"github.com/fotofolio/backend/internal/models"
)

const inviteColumns = `id, email, project_id, token, type, status, details, invite_link,
	expires_at, created_by, created_at, updated_at`

// ErrNotPending is returned when a redemption loses the compare-and-set:
// the invite was already accepted or has expired between validation and
// the update.
var ErrNotPending = errors.New("invite is no longer pending")

// Repository handles email invite persistence and redemption.
type Repository struct {
	pool   *pgxpool.Pool
	grants *access.Repository
}

// NewRepository creates an invite repository.
func NewRepository(pool *pgxpool.Pool, grants *access.Repository) *Repository {
	return &Repository{pool: pool, grants: grants}
}

func scanInvite(row pgx.Row) (*models.EmailInvite, error) {
	var inv models.EmailInvite
	err := row.Scan(&inv.ID, &inv.Email, &inv.ProjectID, &inv.Token, &inv.Type, &inv.Status,
		&inv.Details, &inv.InviteLink, &inv.ExpiresAt, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetProject returns the live project within the tenant, or pgx.ErrNoRows.
func (r *Repository) GetProject(ctx context.Context, tenantID, projectID uuid.UUID) (*models.Project, error) {
	const q = `SELECT id, title, description, event_date, status, tenant_id, created_by,
			is_active, created_at, updated_at
		FROM projects WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	var p models.Project
	err := r.pool.QueryRow(ctx, q, projectID, tenantID).
		Scan(&p.ID, &p.Title, &p.Description, &p.EventDate, &p.Status, &p.TenantID,
			&p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindActive returns the invite blocking a re-issue for (project, email):
// an ACCEPTED one, or a PENDING one that has not expired. Expired PENDING
// invites do not block and the email can be invited again.
func (r *Repository) FindActive(ctx context.Context, projectID uuid.UUID, email string) (*models.EmailInvite, error) {
	q := `SELECT ` + inviteColumns + ` FROM email_invites
		WHERE project_id = $1 AND email = $2
			AND (status = 'ACCEPTED' OR (status = 'PENDING' AND expires_at > NOW()))
		ORDER BY created_at DESC
		LIMIT 1`
	return scanInvite(r.pool.QueryRow(ctx, q, projectID, email))
}

// Create persists a new invite.
func (r *Repository) Create(ctx context.Context, inv *models.EmailInvite) error {
	const q = `INSERT INTO email_invites
			(id, email, project_id, token, type, status, details, invite_link, expires_at, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, inv.Email, inv.ProjectID, inv.Token, string(inv.Type),
		string(inv.Status), inv.Details, inv.InviteLink, inv.ExpiresAt, inv.CreatedBy).
		Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

// GetByToken returns the invite for a token, or pgx.ErrNoRows.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.EmailInvite, error) {
	q := `SELECT ` + inviteColumns + ` FROM email_invites WHERE token = $1`
	return scanInvite(r.pool.QueryRow(ctx, q, token))
}

// ListByProject returns the project's invites newest first.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.EmailInvite, error) {
	q := `SELECT ` + inviteColumns + ` FROM email_invites
		WHERE project_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.EmailInvite{}
	for rows.Next() {
		var inv models.EmailInvite
		if err := rows.Scan(&inv.ID, &inv.Email, &inv.ProjectID, &inv.Token, &inv.Type, &inv.Status,
			&inv.Details, &inv.InviteLink, &inv.ExpiresAt, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// redeem flips the invite PENDING -> ACCEPTED and inserts the grant inside
// tx. The update is a compare-and-set on status and expiry, so two
// concurrent redemptions cannot both win and an invite that expired after
// validation cannot slip through.
func (r *Repository) redeem(ctx context.Context, tx pgx.Tx, token string, profileID uuid.UUID) (*models.EmailInvite, error) {
	const q = `UPDATE email_invites
		SET status = 'ACCEPTED', updated_at = NOW()
		WHERE token = $1 AND status = 'PENDING' AND expires_at > NOW()
		RETURNING ` + inviteColumns
	inv, err := scanInvite(tx.QueryRow(ctx, q, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	var projectTenant uuid.UUID
	const tq = `SELECT tenant_id FROM projects WHERE id = $1`
	if err := tx.QueryRow(ctx, tq, inv.ProjectID).Scan(&projectTenant); err != nil {
		return nil, err
	}

	grant := &access.Grant{
		ProjectID:     inv.ProjectID,
		UserProfileID: profileID,
		TenantID:      projectTenant,
		Level:         access.Level(inv.Details.AccessLevel),
	}
	if err := r.grants.InsertGrantTx(ctx, tx, grant, inv.CreatedBy); err != nil {
		return nil, err
	}
	return inv, nil
}

// Accept redeems an invite for an existing profile. The status flip and the
// grant insert commit together.
func (r *Repository) Accept(ctx context.Context, token string, profileID uuid.UUID) (*models.EmailInvite, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := r.redeem(ctx, tx, token, profileID)
	if err != nil {
		return nil, err
	}
	return inv, tx.Commit(ctx)
}

// Registration is the result of a register-and-redeem: the new account plus
// the redeemed invite.
type Registration struct {
	User    *models.User
	Profile *models.UserProfile
	Invite  *models.EmailInvite
}

// registrationPlan says how redemption materializes an account for the
// invited email: create one from scratch, or complete whatever already
// exists (the invitee may have signed up independently after the invite
// went out).
type registrationPlan struct {
	createUser    bool
	setPassword   bool
	createProfile bool
}

func planRegistration(existing *models.User, profile *models.UserProfile, passwordHash string) registrationPlan {
	if existing == nil {
		return registrationPlan{createUser: true, createProfile: true}
	}
	return registrationPlan{
		setPassword:   existing.Password == "" && passwordHash != "",
		createProfile: profile == nil,
	}
}

// AcceptAndRegister redeems the invite and makes sure the invited email has
// a usable account, all in one transaction. A fresh email gets a new user
// and CLIENT profile; an email that already has an account keeps it, gaining
// a password (and verified flag) when it had none and a CLIENT profile when
// it had no profile. The created profile carries no tenant; its only access
// is the grant the invite confers.
func (r *Repository) AcceptAndRegister(ctx context.Context, token, name, passwordHash string) (*Registration, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Peek the invite first to get the email the account is created under.
	var email string
	const pq = `SELECT email FROM email_invites WHERE token = $1 AND status = 'PENDING' AND expires_at > NOW()`
	if err := tx.QueryRow(ctx, pq, token).Scan(&email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	user := &models.User{}
	const euq = `SELECT id, email, COALESCE(password_hash,''), name, is_verified, created_at, updated_at
		FROM users WHERE email = $1`
	err = tx.QueryRow(ctx, euq, email).
		Scan(&user.ID, &user.Email, &user.Password, &user.Name, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	var existing *models.User
	if err == nil {
		existing = user
	}

	var profile *models.UserProfile
	if existing != nil {
		var p models.UserProfile
		const epq = `SELECT id, user_id, role, name, tenant_id, created_at, updated_at
			FROM user_profiles WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`
		err = tx.QueryRow(ctx, epq, existing.ID).
			Scan(&p.ID, &p.UserID, &p.Role, &p.Name, &p.TenantID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			profile = &p
		}
	}

	plan := planRegistration(existing, profile, passwordHash)

	if plan.createUser {
		user = &models.User{Email: email, Name: name, Password: passwordHash, IsVerified: true}
		const uq = `INSERT INTO users (id, email, password_hash, name, is_verified)
			VALUES (gen_random_uuid(), $1, NULLIF($2,''), $3, TRUE)
			RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, uq, email, passwordHash, name).
			Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
	} else if plan.setPassword {
		const cq = `UPDATE users SET password_hash = $2, name = $3, is_verified = TRUE, updated_at = NOW()
			WHERE id = $1 RETURNING updated_at`
		if err := tx.QueryRow(ctx, cq, user.ID, passwordHash, name).Scan(&user.UpdatedAt); err != nil {
			return nil, err
		}
		user.Password = passwordHash
		user.Name = name
		user.IsVerified = true
	}

	if plan.createProfile {
		profile = &models.UserProfile{UserID: user.ID, Role: models.RoleClient, Name: name}
		const prq = `INSERT INTO user_profiles (id, user_id, role, name, tenant_id, created_by)
			VALUES (gen_random_uuid(), $1, $2, $3, NULL, $1)
			RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, prq, user.ID, string(models.RoleClient), name).
			Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, err
		}
	}

	inv, err := r.redeem(ctx, tx, token, profile.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &Registration{User: user, Profile: profile, Invite: inv}, nil
}
