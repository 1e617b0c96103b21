package service

import (
	"context"
	"errors"
	"sync"

	"dancebook/internal/access"
	"dancebook/internal/events"
	identityerrors "dancebook/internal/identity/errors"
	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/model"

	"golang.org/x/sync/errgroup"
)

// ListAccounts splits accounts by role. Organisers are flagged when they are
// the caller; nothing stops an organiser deleting their own account.
func (s *adminService) ListAccounts(ctx context.Context, caller *access.Identity) (*model.AccountListing, error) {
	if err := s.authorize(caller, "ListAccounts"); err != nil {
		return nil, err
	}

	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list accounts", "error", err)
		return nil, apperrors.Storage("Failed to list accounts", err)
	}

	listing := &model.AccountListing{
		Organisers: []model.AccountSummary{},
		Members:    []model.AccountSummary{},
	}
	for _, a := range accounts {
		summary := model.AccountSummary{
			ID:       a.ID,
			Username: a.Username,
			Role:     a.Role,
			Email:    a.Email,
		}
		if a.IsOrganiser() {
			summary.IsSelf = a.ID == caller.AccountID
			listing.Organisers = append(listing.Organisers, summary)
			continue
		}
		listing.Members = append(listing.Members, summary)
	}
	return listing, nil
}

// DeleteAccount removes the account and then every enrolment made with its
// email. The enrolment sweep is best effort: failures are collected and
// reported as a storage error carrying the partial summary.
func (s *adminService) DeleteAccount(ctx context.Context, caller *access.Identity, id string) (*model.AccountDeletion, error) {
	if err := s.authorize(caller, "DeleteAccount"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Account ID cannot be empty")
	}

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, identityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Account", id)
		}
		s.cfg.Log.Error("Failed to load account", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to load account", err)
	}

	if err := s.accounts.Remove(ctx, id); err != nil {
		if errors.Is(err, identityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Account", id)
		}
		s.cfg.Log.Error("Failed to delete account", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to delete account", err)
	}

	summary := &model.AccountDeletion{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Outcome:   model.OutcomeAccountDeletedNoEnrolments,
	}

	if account.Email != "" {
		if err := s.purgeEnrolments(ctx, summary); err != nil {
			return summary, err
		}
	}

	s.cfg.Log.Info("Account deleted successfully",
		"id", account.ID,
		"username", account.Username,
		"enrolments_removed", summary.EnrolmentsRemoved,
		"by", caller.AccountID,
	)
	s.emit(ctx, events.AccountDeleted, account.ID, events.AccountPayload{
		AccountID:         account.ID,
		Username:          account.Username,
		Role:              account.Role,
		EnrolmentsRemoved: summary.EnrolmentsRemoved,
	})
	return summary, nil
}

func (s *adminService) purgeEnrolments(ctx context.Context, summary *model.AccountDeletion) error {
	enrolments, err := s.enrolments.Find(ctx, model.EnrolmentQuery{Email: summary.Email})
	if err != nil {
		s.cfg.Log.Error("Failed to find enrolments for deleted account",
			"account_id", summary.AccountID,
			"error", err,
		)
		return apperrors.Storage("Account deleted but its enrolments could not be listed", err).
			WithDetails(map[string]any{"summary": summary})
	}

	summary.EnrolmentsFound = len(enrolments)
	if len(enrolments) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		removed int
		failed  []string
		lastErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for _, e := range enrolments {
		e := e
		g.Go(func() error {
			_, err := s.enrolments.Remove(gctx, model.EnrolmentQuery{ID: e.ID})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, e.ID)
				lastErr = err
				return nil
			}
			removed++
			return nil
		})
	}
	_ = g.Wait()

	summary.EnrolmentsRemoved = removed
	summary.FailedEnrolmentIDs = failed
	if removed > 0 {
		summary.Outcome = model.OutcomeAccountAndEnrolmentsDeleted
	}

	if len(failed) > 0 {
		s.cfg.Log.Error("Failed to remove some enrolments of deleted account",
			"account_id", summary.AccountID,
			"failed", len(failed),
			"removed", removed,
			"error", lastErr,
		)
		return apperrors.Storage("Account deleted but some enrolments could not be removed", lastErr).
			WithDetails(map[string]any{"summary": summary})
	}
	return nil
}
