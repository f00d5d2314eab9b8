package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RegisterProfileMessage struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeat_password"`
	UseHashid      bool
}

func (e RegisterProfileMessage) Type() string { return "profile.register" }

// RegisterProfileHandler creates an identity and its owned profile in a
// single transaction. Validation failures are collected and reported
// together; no token is issued here, issuance is composed by the caller.
type RegisterProfileHandler struct {
	repo   RepositoryManager
	clock  Clock
	logger Logger
}

func NewRegisterProfileHandler(repo RepositoryManager) *RegisterProfileHandler {
	return &RegisterProfileHandler{
		repo:   repo,
		clock:  SystemClock(),
		logger: defLogger{},
	}
}

// WithClock overrides the clock used to stamp the profile creation date.
func (h *RegisterProfileHandler) WithClock(clock Clock) *RegisterProfileHandler {
	if clock != nil {
		h.clock = clock
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterProfileHandler) WithLogger(logger Logger) *RegisterProfileHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterProfileHandler) Execute(ctx context.Context, event RegisterProfileMessage) (*Profile, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterProfileHandler) execute(ctx context.Context, event RegisterProfileMessage) (*Profile, error) {
	profile := &Profile{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		verrs := &ValidationErrors{}

		if event.Password != event.RepeatPassword {
			verrs.Append(ErrPasswordMismatch)
		}

		verrs.Append(ValidatePasswordStrength(event.Password, event.Username, event.Email))

		taken, err := h.repo.Identities().UsernameTakenTx(ctx, tx, event.Username, uuid.Nil)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username availability")
		}
		if taken {
			verrs.Append(ErrUsernameTaken)
		}

		verrs.Append(ValidateEmail(event.Email))
		verrs.Append(ValidateUsername(event.Username))

		if verrs.HasErrors() {
			return verrs.ErrOrNil()
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		identity := &Identity{
			Username:     event.Username,
			Email:        event.Email,
			PasswordHash: hash,
		}
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				identity.ID = id
			}
		}

		if identity, err = h.repo.Identities().CreateTx(ctx, tx, identity); err != nil {
			if IsConflictError(err) {
				return err
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create identity")
		}

		now := h.clock.Now()
		profile.IdentityID = identity.ID
		profile.CreatedAt = &now

		if profile, err = h.repo.Profiles().CreateTx(ctx, tx, profile); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create profile")
		}

		profile.Identity = identity

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

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "profile registration transaction failed")
	}

	return profile, nil
}
