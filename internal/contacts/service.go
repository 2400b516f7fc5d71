package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/auth"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

const (
	maxCity   = 50
	maxStreet = 100
	maxPart   = 15
	maxPhone  = 20
)

type repository interface {
	ListByUser(ctx context.Context, userID uint64) ([]models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	FindForUser(ctx context.Context, userID, contactID uint64) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	DeleteForUser(ctx context.Context, userID uint64, ids []uint64) (int64, error)
}

// Service manages the caller's delivery contacts.
type Service interface {
	List(ctx context.Context, p auth.Principal) ([]ContactDTO, error)
	Create(ctx context.Context, p auth.Principal, req CreateContactRequest) (*ContactDTO, error)
	Update(ctx context.Context, p auth.Principal, req UpdateContactRequest) (*ContactDTO, error)
	Delete(ctx context.Context, p auth.Principal, items string) (int64, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contacts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, p auth.Principal) ([]ContactDTO, error) {
	if !p.Authenticated() {
		return nil, unauthorized()
	}
	rows, err := s.repo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list contacts")
	}
	out := make([]ContactDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, p auth.Principal, req CreateContactRequest) (*ContactDTO, error) {
	if !p.Authenticated() {
		return nil, unauthorized()
	}
	contact := models.Contact{
		UserID:    p.UserID,
		City:      strings.TrimSpace(req.City),
		Street:    strings.TrimSpace(req.Street),
		House:     strings.TrimSpace(req.House),
		Structure: strings.TrimSpace(req.Structure),
		Building:  strings.TrimSpace(req.Building),
		Apartment: strings.TrimSpace(req.Apartment),
		Phone:     strings.TrimSpace(req.Phone),
	}

	var missing []string
	for _, field := range []struct{ name, value string }{
		{"city", contact.City},
		{"street", contact.Street},
		{"phone", contact.Phone},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeMissingArguments, "missing required arguments").
			WithDetails(map[string]any{"fields": missing})
	}
	if err := validateLengths(contact); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contact")
	}
	dto := FromModel(contact)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, p auth.Principal, req UpdateContactRequest) (*ContactDTO, error) {
	if !p.Authenticated() {
		return nil, unauthorized()
	}
	id, ok := req.ID.Uint64()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact id must be numeric").
			WithDetails(map[string]any{"id": []string{"must be a positive integer"}})
	}

	contact, err := s.repo.FindForUser(ctx, p.UserID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load contact")
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&contact.City, req.City)
	apply(&contact.Street, req.Street)
	apply(&contact.House, req.House)
	apply(&contact.Structure, req.Structure)
	apply(&contact.Building, req.Building)
	apply(&contact.Apartment, req.Apartment)
	apply(&contact.Phone, req.Phone)

	if contact.City == "" || contact.Street == "" || contact.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city, street and phone cannot be blank")
	}
	if err := validateLengths(*contact); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update contact")
	}
	dto := FromModel(*contact)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, p auth.Principal, items string) (int64, error) {
	if !p.Authenticated() {
		return 0, unauthorized()
	}
	ids := types.ParseIDList(items)
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "missing arguments")
	}
	deleted, err := s.repo.DeleteForUser(ctx, p.UserID, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete contacts")
	}
	return deleted, nil
}

func validateLengths(c models.Contact) error {
	details := map[string]any{}
	check := func(field, value string, max int) {
		if utf8.RuneCountInString(value) > max {
			details[field] = []string{fmt.Sprintf("Ensure this field has no more than %d characters.", max)}
		}
	}
	check("city", c.City, maxCity)
	check("street", c.Street, maxStreet)
	check("house", c.House, maxPart)
	check("structure", c.Structure, maxPart)
	check("building", c.Building, maxPart)
	check("apartment", c.Apartment, maxPart)
	check("phone", c.Phone, maxPhone)
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact fields too long").WithDetails(details)
	}
	return nil
}

func unauthorized() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
}
