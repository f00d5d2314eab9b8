package accounts

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MutationsController translates the three mutation-shaped requests into
// command executions. It holds no business rules: payload shape checks
// happen here, everything else is the handlers' job.
type MutationsController struct {
	register *RegisterProfileHandler
	update   *UpdateProfileHandler
	password *ChangePasswordHandler
	tokens   TokenService
	logger   Logger
}

func NewMutationsController(repo RepositoryManager, tokens TokenService) *MutationsController {
	return &MutationsController{
		register: NewRegisterProfileHandler(repo),
		update:   NewUpdateProfileHandler(repo),
		password: NewChangePasswordHandler(repo),
		tokens:   tokens,
		logger:   defLogger{},
	}
}

// WithLogger overrides the controller logger and propagates it to handlers.
func (a *MutationsController) WithLogger(logger Logger) *MutationsController {
	if logger != nil {
		a.logger = logger
		a.register.WithLogger(logger)
		a.update.WithLogger(logger)
		a.password.WithLogger(logger)
	}
	return a
}

// WithClock propagates a clock to the handlers that stamp timestamps.
func (a *MutationsController) WithClock(clock Clock) *MutationsController {
	if clock != nil {
		a.register.WithClock(clock)
		a.update.WithClock(clock)
	}
	return a
}

// RegisterRoutes mounts the mutation endpoints on the app.
func (a *MutationsController) RegisterRoutes(app *fiber.App) {
	app.Post("/mutations/register", a.RegisterPost)
	app.Post("/mutations/profile", a.ProfilePost)
	app.Post("/mutations/password", a.PasswordPost)
}

type RegisterPayload struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeat_password"`
}

// Validate checks the payload carries every required field. Field-level
// rules run in the command so failures aggregate in one response.
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.RepeatPassword, validation.Required),
	)
}

func (a *MutationsController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		a.logger.Error("register parse payload: %v", err)
		return respondMessages(c, fiber.StatusBadRequest, "failed to parse payload")
	}

	a.logger.Debug("register payload: %s", print.MaybePrettyJSON(payload))

	if err := payload.Validate(); err != nil {
		return respondOzzo(c, err)
	}

	profile, err := a.register.Execute(c.Context(), RegisterProfileMessage{
		Username:       payload.Username,
		Email:          payload.Email,
		Password:       payload.Password,
		RepeatPassword: payload.RepeatPassword,
	})
	if err != nil {
		return a.respondError(c, err)
	}

	token, err := a.tokens.Generate(profile.Identity)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"profile": profile,
		"token":   token,
	})
}

type ProfilePayload struct {
	UserID    string  `json:"user_id"`
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Validate checks the payload identifies an account.
func (r ProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
	)
}

func (a *MutationsController) ProfilePost(c *fiber.Ctx) error {
	payload := new(ProfilePayload)

	if err := c.BodyParser(payload); err != nil {
		a.logger.Error("profile parse payload: %v", err)
		return respondMessages(c, fiber.StatusBadRequest, "failed to parse payload")
	}

	if err := payload.Validate(); err != nil {
		return respondOzzo(c, err)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return respondMessages(c, fiber.StatusBadRequest, "user_id must be a valid UUID")
	}

	profile, err := a.update.Execute(c.Context(), UpdateProfileMessage{
		UserID:    userID,
		Username:  payload.Username,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"profile": profile,
	})
}

type PasswordPayload struct {
	UserID         string `json:"user_id"`
	OldPassword    string `json:"old_password"`
	NewPassword    string `json:"new_password"`
	RepeatPassword string `json:"repeat_password"`
}

// Validate checks the payload carries every required field.
func (r PasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
		validation.Field(&r.RepeatPassword, validation.Required),
	)
}

func (a *MutationsController) PasswordPost(c *fiber.Ctx) error {
	payload := new(PasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.logger.Error("password parse payload: %v", err)
		return respondMessages(c, fiber.StatusBadRequest, "failed to parse payload")
	}

	if err := payload.Validate(); err != nil {
		return respondOzzo(c, err)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return respondMessages(c, fiber.StatusBadRequest, "user_id must be a valid UUID")
	}

	profile, err := a.password.Execute(c.Context(), ChangePasswordMessage{
		UserID:         userID,
		OldPassword:    payload.OldPassword,
		NewPassword:    payload.NewPassword,
		RepeatPassword: payload.RepeatPassword,
	})
	if err != nil {
		return a.respondError(c, err)
	}

	// credential changed, issue a fresh token
	token, err := a.tokens.Generate(profile.Identity)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"profile": profile,
		"token":   token,
	})
}

// respondError maps classified command failures to transport responses:
// collected validation failures become an ordered message list.
func (a *MutationsController) respondError(c *fiber.Ctx, err error) error {
	if verrs, ok := AsValidationErrors(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"messages": verrs.Messages(),
		})
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryNotFound:
			return respondMessages(c, fiber.StatusNotFound, richErr.Message)
		case goerrors.CategoryAuth:
			return respondMessages(c, fiber.StatusUnauthorized, richErr.Message)
		case goerrors.CategoryConflict, goerrors.CategoryValidation:
			return respondMessages(c, fiber.StatusUnprocessableEntity, richErr.Message)
		case goerrors.CategoryBadInput:
			return respondMessages(c, fiber.StatusBadRequest, richErr.Message)
		}
	}

	a.logger.Error("mutation failed: %v", err)

	return respondMessages(c, fiber.StatusInternalServerError, "internal error")
}

func respondOzzo(c *fiber.Ctx, err error) error {
	if fieldErrs, ok := err.(validation.Errors); ok {
		messages := make([]string, 0, len(fieldErrs))
		for field, ferr := range fieldErrs {
			messages = append(messages, field+": "+ferr.Error())
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"messages": messages,
		})
	}
	return respondMessages(c, fiber.StatusUnprocessableEntity, err.Error())
}

func respondMessages(c *fiber.Ctx, status int, messages ...string) error {
	return c.Status(status).JSON(fiber.Map{
		"messages": messages,
	})
}
