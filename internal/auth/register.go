package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/shopdesk-backend/internal/notifications"
	"github.com/angelmondragon/shopdesk-backend/internal/users"
	"github.com/angelmondragon/shopdesk-backend/pkg/config"
	"github.com/angelmondragon/shopdesk-backend/pkg/db"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/security"
	"gorm.io/gorm"
)

const duplicateEmailMessage = "user with this email already exists."

// RegisterService handles the account creation transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, events ...notifications.Event)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner        txRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	Dispatcher      eventDispatcher
	PasswordConfig  config.PasswordConfig
}

type registerService struct {
	tx          txRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	dispatcher  eventDispatcher
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	factory := params.UserRepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) registerUserRepository { return users.NewRepository(tx) }
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    factory,
		dispatcher:  params.Dispatcher,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Company = strings.TrimSpace(req.Company)
	req.Position = strings.TrimSpace(req.Position)

	if missing := missingRegisterFields(req); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeMissingArguments, "missing required arguments").
			WithDetails(map[string]any{"fields": missing})
	}

	accountType, err := enums.ParseAccountType(req.Type)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type").
			WithDetails(map[string]any{"type": []string{err.Error()}})
	}

	if problems := security.ValidatePassword(req.Password, s.passwordCfg.MinLength, security.PasswordContext{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}); len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password rejected").
			WithDetails(map[string]any{"password": problems})
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, req.Email); err == nil {
			return duplicateEmailError()
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        req.Email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Company:      req.Company,
			Position:     req.Position,
			Type:         accountType,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return duplicateEmailError()
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, notifications.UserRegistered(created.ID, created.Email))
	}
	return users.FromModel(created), nil
}

func duplicateEmailError() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "email already registered").
		WithDetails(map[string]any{"email": []string{duplicateEmailMessage}})
}

func missingRegisterFields(req RegisterRequest) []string {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
		{"company", req.Company},
		{"position", req.Position},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}
