package accounts

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// lastActivitySubquery resolves the most recent activity event per profile.
const lastActivitySubquery = `(SELECT MAX("act"."occurred_at") FROM "activities" AS "act" WHERE "act"."profile_id" = "prf"."id")`

// Profiles is the aggregation root the lifecycle service manipulates.
type Profiles interface {
	repository.Repository[*Profile]

	Create(ctx context.Context, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error)

	GetByIdentityID(ctx context.Context, identityID uuid.UUID) (*Profile, error)
	GetByIdentityIDTx(ctx context.Context, tx bun.IDB, identityID uuid.UUID) (*Profile, error)

	Active(ctx context.Context, window time.Time, now time.Time) ([]*Profile, error)
	ActiveTx(ctx context.Context, tx bun.IDB, window time.Time, now time.Time) ([]*Profile, error)
	NotActive(ctx context.Context, window time.Time, now time.Time) ([]*Profile, error)
	NotActiveTx(ctx context.Context, tx bun.IDB, window time.Time, now time.Time) ([]*Profile, error)
}

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var (
	_ Profiles                        = (*profiles)(nil)
	_ repository.Repository[*Profile] = (*profiles)(nil)
)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (a *profiles) Create(ctx context.Context, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *profiles) CreateTx(ctx context.Context, tx bun.IDB, record *Profile, criteria ...repository.InsertCriteria) (*Profile, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *profiles) GetByIdentityID(ctx context.Context, identityID uuid.UUID) (*Profile, error) {
	return a.GetByIdentityIDTx(ctx, a.db, identityID)
}

// GetByIdentityIDTx loads the profile owned by the identity, its identity
// relation, and the derived last-activity timestamp.
func (a *profiles) GetByIdentityIDTx(ctx context.Context, tx bun.IDB, identityID uuid.UUID) (*Profile, error) {
	record := &Profile{}

	err := tx.NewSelect().
		Model(record).
		Relation("Identity").
		ColumnExpr("?TableAlias.*").
		ColumnExpr(lastActivitySubquery+" AS last_activity_at").
		Where("?TableAlias.identity_id = ?", identityID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"identity_id": identityID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *profiles) Active(ctx context.Context, window time.Time, now time.Time) ([]*Profile, error) {
	return a.ActiveTx(ctx, a.db, window, now)
}

// ActiveTx returns profiles whose most recent activity falls inside
// (window, now]: strictly after the window start so a profile exactly at
// the threshold counts as inactive, matching ActivityEngine.IsActiveAt.
func (a *profiles) ActiveTx(ctx context.Context, tx bun.IDB, window time.Time, now time.Time) ([]*Profile, error) {
	var records []*Profile

	err := a.listWithActivity(tx, &records).
		Where(lastActivitySubquery+" > ?", window).
		Scan(ctx)

	return records, err
}

func (a *profiles) NotActive(ctx context.Context, window time.Time, now time.Time) ([]*Profile, error) {
	return a.NotActiveTx(ctx, a.db, window, now)
}

// NotActiveTx is the strict complement of ActiveTx: profiles with no
// activity at all, or none after the window start.
func (a *profiles) NotActiveTx(ctx context.Context, tx bun.IDB, window time.Time, now time.Time) ([]*Profile, error) {
	var records []*Profile

	err := a.listWithActivity(tx, &records).
		Where(lastActivitySubquery+" IS NULL OR "+lastActivitySubquery+" <= ?", window).
		Scan(ctx)

	return records, err
}

func (a *profiles) listWithActivity(tx bun.IDB, records *[]*Profile) *bun.SelectQuery {
	return tx.NewSelect().
		Model(records).
		Relation("Identity").
		ColumnExpr("?TableAlias.*").
		ColumnExpr(lastActivitySubquery + " AS last_activity_at").
		Order("prf.created_at ASC")
}
