package accounts

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var UpdatePasswordSQL = `UPDATE "identities" AS "idn"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"idn"."deleted_at" IS NULL
AND (
	"idn"."id" = ?
) RETURNING *;`

// Identities persists the canonical authentication records.
type Identities interface {
	repository.Repository[*Identity]

	Create(ctx context.Context, record *Identity, criteria ...repository.InsertCriteria) (*Identity, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Identity, criteria ...repository.InsertCriteria) (*Identity, error)

	UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	UsernameTakenTx(ctx context.Context, tx bun.IDB, username string, excludeID uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	EmailTakenTx(ctx context.Context, tx bun.IDB, email string, excludeID uuid.UUID) (bool, error)

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*Identity, error)
	UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) (*Identity, error)
}

type identities struct {
	repository.Repository[*Identity]
	db *bun.DB
}

var (
	_ Identities                       = (*identities)(nil)
	_ repository.Repository[*Identity] = (*identities)(nil)
)

func NewIdentitiesRepository(db *bun.DB) Identities {
	repo := repository.NewRepository[*Identity](db, repository.ModelHandlers[*Identity]{
		NewRecord: func() *Identity { return &Identity{} },
		GetID: func(i *Identity) uuid.UUID {
			if i == nil {
				return uuid.Nil
			}
			return i.ID
		},
		SetID: func(i *Identity, id uuid.UUID) {
			if i != nil {
				i.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &identities{
		Repository: repo,
		db:         db,
	}
}

func (a *identities) Create(ctx context.Context, record *Identity, criteria ...repository.InsertCriteria) (*Identity, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *identities) CreateTx(ctx context.Context, tx bun.IDB, record *Identity, criteria ...repository.InsertCriteria) (*Identity, error) {
	prepareIdentityDefaults(record)

	record, err := a.Repository.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictFromUniqueViolation(err)
		}
		return nil, err
	}

	return record, nil
}

func (a *identities) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	return a.UsernameTakenTx(ctx, a.db, username, excludeID)
}

func (a *identities) UsernameTakenTx(ctx context.Context, tx bun.IDB, username string, excludeID uuid.UUID) (bool, error) {
	return a.columnTaken(ctx, tx, "username", username, excludeID)
}

func (a *identities) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	return a.EmailTakenTx(ctx, a.db, email, excludeID)
}

func (a *identities) EmailTakenTx(ctx context.Context, tx bun.IDB, email string, excludeID uuid.UUID) (bool, error) {
	return a.columnTaken(ctx, tx, "email", email, excludeID)
}

// columnTaken checks whether another identity holds the value. excludeID
// lets updates skip the identity being modified so a no-op update does not
// read as a conflict.
func (a *identities) columnTaken(ctx context.Context, tx bun.IDB, column, value string, excludeID uuid.UUID) (bool, error) {
	q := tx.NewSelect().
		Model((*Identity)(nil)).
		Where("?TableAlias."+column+" = ?", value)

	if excludeID != uuid.Nil {
		q = q.Where("?TableAlias.id != ?", excludeID)
	}

	return q.Exists(ctx)
}

func (a *identities) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*Identity, error) {
	return a.UpdatePasswordTx(ctx, a.db, id, passwordHash)
}

func (a *identities) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) (*Identity, error) {
	res, err := a.Repository.RawTx(ctx, tx, UpdatePasswordSQL, passwordHash, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func prepareIdentityDefaults(record *Identity) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.PasswordHash == "" {
		record.PasswordHash = RandomPasswordHash()
	}
}
