package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-accounts/core"
	"github.com/uptrace/bun"
)

type AccountRecordStore struct {
	db   *bun.DB
	repo repository.Repository[*accountRecord]
}

// NewAccountRecordStore accepts a *bun.DB or a persistence client exposing
// DB() *bun.DB.
func NewAccountRecordStore(persistenceClient any) (*AccountRecordStore, error) {
	db, err := resolveBunDB(persistenceClient)
	if err != nil {
		return nil, err
	}
	repo := repository.NewRepository[*accountRecord](db, accountRecordHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid account record repository wiring: %w", err)
		}
	}
	return &AccountRecordStore{db: db, repo: repo}, nil
}

func (s *AccountRecordStore) DB() *bun.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// EnsureSchema creates the account_records table and its (user_id, scheme)
// unique index when missing.
func (s *AccountRecordStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: account record store is not configured")
	}
	if _, err := s.db.NewCreateTable().
		Model((*accountRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create account_records: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*accountRecord)(nil)).
		Index("account_records_user_scheme_idx").
		Unique().
		IfNotExists().
		Column("user_id", "scheme").
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create account_records index: %w", err)
	}
	return nil
}

// Save stores account.Serialize() as the user's record for the account's
// scheme, replacing any earlier record.
func (s *AccountRecordStore) Save(ctx context.Context, userID string, account core.Account) (AccountRecord, error) {
	if s == nil || s.repo == nil || s.db == nil {
		return AccountRecord{}, fmt.Errorf("sqlstore: account record store is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AccountRecord{}, fmt.Errorf("sqlstore: user id is required")
	}
	if account == nil {
		return AccountRecord{}, fmt.Errorf("sqlstore: account is required")
	}
	scheme := core.NormalizeScheme(account.Scheme())
	if scheme == "" {
		return AccountRecord{}, fmt.Errorf("sqlstore: account scheme is required")
	}
	credsJSON, err := account.Serialize()
	if err != nil {
		return AccountRecord{}, fmt.Errorf("sqlstore: serialize %s account: %w", scheme, err)
	}
	now := time.Now().UTC()

	var saved AccountRecord
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(accountRecord)
		selectErr := tx.NewSelect().
			Model(existing).
			Where("?TableAlias.user_id = ?", userID).
			Where("?TableAlias.scheme = ?", string(scheme)).
			Limit(1).
			Scan(ctx)
		if selectErr == nil {
			existing.CredsJSON = credsJSON
			existing.UpdatedAt = now
			if _, updateErr := tx.NewUpdate().
				Model(existing).
				Column("creds_json", "updated_at").
				WherePK().
				Exec(ctx); updateErr != nil {
				return updateErr
			}
			saved = existing.toDomain()
			return nil
		}
		if !errors.Is(selectErr, sql.ErrNoRows) {
			return selectErr
		}

		created, createErr := s.repo.CreateTx(ctx, tx, newAccountRecord(userID, scheme, credsJSON, now))
		if createErr != nil {
			return createErr
		}
		saved = created.toDomain()
		return nil
	})
	if err != nil {
		return AccountRecord{}, err
	}
	return saved, nil
}

func (s *AccountRecordStore) Get(ctx context.Context, userID string, scheme core.AccountScheme) (AccountRecord, error) {
	if s == nil || s.repo == nil {
		return AccountRecord{}, fmt.Errorf("sqlstore: account record store is not configured")
	}
	userID = strings.TrimSpace(userID)
	scheme = core.NormalizeScheme(scheme)
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("user_id", "=", userID),
		repository.SelectBy("scheme", "=", string(scheme)),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return AccountRecord{}, err
	}
	if len(records) == 0 {
		return AccountRecord{}, accountRecordNotFoundError(userID, scheme)
	}
	return records[0].toDomain(), nil
}

// LoadSerialized returns the stored serialized account form.
func (s *AccountRecordStore) LoadSerialized(ctx context.Context, userID string, scheme core.AccountScheme) (string, error) {
	record, err := s.Get(ctx, userID, scheme)
	if err != nil {
		return "", err
	}
	return record.CredsJSON, nil
}

func (s *AccountRecordStore) Delete(ctx context.Context, userID string, scheme core.AccountScheme) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: account record store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*accountRecord)(nil)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("scheme = ?", string(core.NormalizeScheme(scheme))).
		Exec(ctx)
	return err
}

func accountRecordNotFoundError(userID string, scheme core.AccountScheme) error {
	return goerrors.New(
		fmt.Sprintf("sqlstore: %s account record not found for user %q", scheme, userID),
		goerrors.CategoryNotFound,
	).
		WithCode(http.StatusNotFound).
		WithTextCode(core.AccountErrorRecordNotFound).
		WithMetadata(map[string]any{"user_id": userID, "scheme": string(scheme)})
}

// IsAccountRecordNotFound reports whether err is a missing record failure.
func IsAccountRecordNotFound(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == core.AccountErrorRecordNotFound
}
