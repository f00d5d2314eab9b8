package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateProfileMessage is a patch: nil fields were not supplied and stay
// untouched, non-nil fields are validated and applied as one batch.
type UpdateProfileMessage struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  *string   `json:"username,omitempty"`
	Email     *string   `json:"email,omitempty"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
}

func (e UpdateProfileMessage) Type() string { return "profile.update" }

// UpdateProfileHandler applies partial updates to an identity/profile pair.
// Identity-level fields (username, email) and profile-level fields (names)
// persist together; any validation failure aborts the whole batch.
type UpdateProfileHandler struct {
	repo   RepositoryManager
	clock  Clock
	logger Logger
}

func NewUpdateProfileHandler(repo RepositoryManager) *UpdateProfileHandler {
	return &UpdateProfileHandler{
		repo:   repo,
		clock:  SystemClock(),
		logger: defLogger{},
	}
}

// WithClock overrides the clock used to stamp the identity update date.
func (h *UpdateProfileHandler) WithClock(clock Clock) *UpdateProfileHandler {
	if clock != nil {
		h.clock = clock
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *UpdateProfileHandler) WithLogger(logger Logger) *UpdateProfileHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *UpdateProfileHandler) Execute(ctx context.Context, event UpdateProfileMessage) (*Profile, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateProfileHandler) execute(ctx context.Context, event UpdateProfileMessage) (*Profile, error) {
	profile := &Profile{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error

		profile, err = h.repo.Profiles().GetByIdentityIDTx(ctx, tx, event.UserID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrProfileNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve profile")
		}

		if err := h.validate(ctx, tx, event, profile.IdentityID); err != nil {
			return err
		}

		if err := h.applyIdentityFields(ctx, tx, event, profile.Identity); err != nil {
			return err
		}

		if err := h.applyProfileFields(ctx, tx, event, profile); err != nil {
			return err
		}

		// reload so pass-through views and last activity reflect the batch
		profile, err = h.repo.Profiles().GetByIdentityIDTx(ctx, tx, event.UserID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not reload profile")
		}

		return nil
	})

	if err != nil {
		if verrs, ok := AsValidationErrors(err); ok {
			return nil, verrs
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "profile update transaction failed")
	}

	return profile, nil
}

// validate runs format checks on every supplied field plus uniqueness
// checks that exclude the identity being updated, so setting a field to its
// current value is never a conflict.
func (h *UpdateProfileHandler) validate(ctx context.Context, tx bun.IDB, event UpdateProfileMessage, identityID uuid.UUID) error {
	verrs := &ValidationErrors{}

	if event.Username != nil {
		verrs.Append(ValidateUsername(*event.Username))

		taken, err := h.repo.Identities().UsernameTakenTx(ctx, tx, *event.Username, identityID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username availability")
		}
		if taken {
			verrs.Append(ErrUsernameTaken)
		}
	}

	if event.Email != nil {
		verrs.Append(ValidateEmail(*event.Email))

		taken, err := h.repo.Identities().EmailTakenTx(ctx, tx, *event.Email, identityID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
		}
		if taken {
			verrs.Append(ErrEmailTaken)
		}
	}

	return verrs.ErrOrNil()
}

func (h *UpdateProfileHandler) applyIdentityFields(ctx context.Context, tx bun.IDB, event UpdateProfileMessage, identity *Identity) error {
	if identity == nil {
		return ErrIdentityNotFound
	}

	var columns []string

	if event.Username != nil {
		identity.Username = *event.Username
		columns = append(columns, "username")
	}

	if event.Email != nil {
		identity.Email = *event.Email
		columns = append(columns, "email")
	}

	if len(columns) == 0 {
		return nil
	}

	now := h.clock.Now()
	identity.UpdatedAt = &now
	columns = append(columns, "updated_at")

	if _, err := tx.NewUpdate().
		Model(identity).
		Column(columns...).
		WherePK().
		Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return conflictFromUniqueViolation(err)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update identity")
	}

	return nil
}

func (h *UpdateProfileHandler) applyProfileFields(ctx context.Context, tx bun.IDB, event UpdateProfileMessage, profile *Profile) error {
	var columns []string

	if event.FirstName != nil {
		profile.FirstName = *event.FirstName
		columns = append(columns, "first_name")
	}

	if event.LastName != nil {
		profile.LastName = *event.LastName
		columns = append(columns, "last_name")
	}

	if len(columns) == 0 {
		return nil
	}

	if _, err := tx.NewUpdate().
		Model(profile).
		Column(columns...).
		WherePK().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update profile")
	}

	return nil
}
