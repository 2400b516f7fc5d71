package notifications

import (
	"context"
	"time"

	"github.com/angelmondragon/shopdesk-backend/pkg/auth"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/pagination"
)

// Service is the caller-facing side of the inbox. Every operation is scoped
// to the authenticated user.
type Service interface {
	List(ctx context.Context, p auth.Principal, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, p auth.Principal, notificationID uint64) error
	MarkAllRead(ctx context.Context, p auth.Principal) (int64, error)
}

type ListParams struct {
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult carries one page. Cursor is empty on the last page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func anonymous() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
}

func (s *service) List(ctx context.Context, p auth.Principal, params ListParams) (*ListResult, error) {
	if !p.Authenticated() {
		return nil, anonymous()
	}
	var from *pagination.Cursor
	if params.Cursor != "" {
		c, err := pagination.Decode(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		from = c
	}

	rows, next, err := s.repo.List(ctx, listNotificationsParams{
		UserID:     p.UserID,
		Limit:      params.Limit,
		Cursor:     from,
		UnreadOnly: params.UnreadOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	out := &ListResult{Items: rows}
	if out.Items == nil {
		out.Items = []models.Notification{}
	}
	if next != nil {
		out.Cursor = next.Token()
	}
	return out, nil
}

// MarkRead is idempotent: marking an already read notification succeeds.
func (s *service) MarkRead(ctx context.Context, p auth.Principal, notificationID uint64) error {
	switch {
	case !p.Authenticated():
		return anonymous()
	case notificationID == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	mark, err := s.repo.MarkRead(ctx, p.UserID, notificationID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !mark.Found {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "notification %d not found", notificationID)
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, p auth.Principal) (int64, error) {
	if !p.Authenticated() {
		return 0, anonymous()
	}
	n, err := s.repo.MarkAllRead(ctx, p.UserID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return n, nil
}
