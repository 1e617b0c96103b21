package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	identityerrors "dancebook/internal/identity/errors"
	"dancebook/internal/identity/validator"
	"dancebook/pkg/docstore"
	"dancebook/pkg/model"
)

const (
	CollectionName = "Accounts"
)

// Indexes are the constraints the accounts collection must carry.
func Indexes() []docstore.Index {
	return []docstore.Index{docstore.UniqueIndex("username")}
}

type AccountRepository interface {
	Insert(ctx context.Context, account *model.Account) error
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
	ListAll(ctx context.Context) ([]*model.Account, error)
	Remove(ctx context.Context, id string) error
}

type accountRepository struct {
	collection docstore.Collection[model.Account]
	validator  *validator.AccountValidator
}

func NewAccountRepository(collection docstore.Collection[model.Account], v *validator.AccountValidator) AccountRepository {
	return &accountRepository{
		collection: collection,
		validator:  v,
	}
}

// Insert assigns the id and creation time. A username already taken fails
// with ErrDuplicateUsername even when two inserts race.
func (r *accountRepository) Insert(ctx context.Context, account *model.Account) error {
	if err := r.validator.Validate(account); err != nil {
		return fmt.Errorf("%w: %w", identityerrors.ErrInvalidAccount, err)
	}

	if account.ID == "" {
		account.ID = docstore.NewID()
	}
	account.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := r.collection.Insert(ctx, account); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return fmt.Errorf("%w: %s", identityerrors.ErrDuplicateUsername, account.Username)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findOne(ctx, docstore.Filter{"username": username})
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return r.findOne(ctx, docstore.ByID(id))
}

func (r *accountRepository) findOne(ctx context.Context, filter docstore.Filter) (*model.Account, error) {
	account, err := r.collection.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, identityerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

func (r *accountRepository) ListAll(ctx context.Context) ([]*model.Account, error) {
	accounts, err := r.collection.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Remove(ctx context.Context, id string) error {
	removed, err := r.collection.Remove(ctx, docstore.ByID(id))
	if err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}
	if removed == 0 {
		return identityerrors.ErrNotFound
	}
	return nil
}
