package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ChangePasswordMessage struct {
	UserID         uuid.UUID `json:"user_id"`
	OldPassword    string    `json:"old_password"`
	NewPassword    string    `json:"new_password"`
	RepeatPassword string    `json:"repeat_password"`
}

func (e ChangePasswordMessage) Type() string { return "profile.password.change" }

// ChangePasswordHandler replaces the stored password hash after verifying
// the old credential. Unlike register and update it fails fast: a missing
// identity or a wrong old password short-circuits before any validation.
// Callers are expected to issue a fresh token afterward.
type ChangePasswordHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewChangePasswordHandler(repo RepositoryManager) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) (*Profile, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) (*Profile, error) {
	profile := &Profile{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error

		profile, err = h.repo.Profiles().GetByIdentityIDTx(ctx, tx, event.UserID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve profile")
		}

		if profile.Identity == nil {
			return ErrIdentityNotFound
		}

		if err := ComparePasswordAndHash(event.OldPassword, profile.Identity.PasswordHash); err != nil {
			return ErrOldPasswordInvalid
		}

		if event.NewPassword != event.RepeatPassword {
			return ErrPasswordMismatch
		}

		if err := ValidatePasswordStrength(event.NewPassword, profile.Username(), profile.Email()); err != nil {
			return err
		}

		hash, err := HashPassword(event.NewPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		identity, err := h.repo.Identities().UpdatePasswordTx(ctx, tx, profile.IdentityID, hash)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password hash")
		}

		profile.Identity = identity

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "password change transaction failed")
	}

	return profile, nil
}
