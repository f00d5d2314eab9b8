package accounts

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Activities reads the per-profile activity record. The lifecycle service
// only ever needs the most recent event; Record exists so collaborators and
// fixtures can append.
type Activities interface {
	repository.Repository[*Activity]

	LastForProfile(ctx context.Context, profileID uuid.UUID) (*Activity, error)
	LastForProfileTx(ctx context.Context, tx bun.IDB, profileID uuid.UUID) (*Activity, error)

	Record(ctx context.Context, activity *Activity) (*Activity, error)
	RecordTx(ctx context.Context, tx bun.IDB, activity *Activity) (*Activity, error)
}

type activities struct {
	repository.Repository[*Activity]
	db *bun.DB
}

var (
	_ Activities                       = (*activities)(nil)
	_ repository.Repository[*Activity] = (*activities)(nil)
)

func NewActivitiesRepository(db *bun.DB) Activities {
	repo := repository.NewRepository[*Activity](db, repository.ModelHandlers[*Activity]{
		NewRecord: func() *Activity { return &Activity{} },
		GetID: func(a *Activity) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Activity, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &activities{
		Repository: repo,
		db:         db,
	}
}

func (a *activities) LastForProfile(ctx context.Context, profileID uuid.UUID) (*Activity, error) {
	return a.LastForProfileTx(ctx, a.db, profileID)
}

// LastForProfileTx returns the most recent activity event for the profile,
// or a record-not-found error when the profile has none.
func (a *activities) LastForProfileTx(ctx context.Context, tx bun.IDB, profileID uuid.UUID) (*Activity, error) {
	record := &Activity{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.profile_id = ?", profileID).
		Order("occurred_at DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"profile_id": profileID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *activities) Record(ctx context.Context, activity *Activity) (*Activity, error) {
	return a.RecordTx(ctx, a.db, activity)
}

func (a *activities) RecordTx(ctx context.Context, tx bun.IDB, activity *Activity) (*Activity, error) {
	if activity != nil && activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, activity)
}
