package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-accounts/core"
)

const accountRecordCacheKeyPrefix = "go-accounts::account_record::v1"

type AccountRecordRepository interface {
	Save(ctx context.Context, userID string, account core.Account) (AccountRecord, error)
	Get(ctx context.Context, userID string, scheme core.AccountScheme) (AccountRecord, error)
	Delete(ctx context.Context, userID string, scheme core.AccountScheme) error
}

// CachedAccountRecordStore serves Get from a read-through cache and drops
// the cached entry whenever the record is written or deleted.
type CachedAccountRecordStore struct {
	base  AccountRecordRepository
	cache repositorycache.CacheService
}

func NewCachedAccountRecordStore(
	base AccountRecordRepository,
	cacheService repositorycache.CacheService,
) (*CachedAccountRecordStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base account record store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: account record cache service is required")
	}
	return &CachedAccountRecordStore{base: base, cache: cacheService}, nil
}

// AccountRecordCacheKey returns go-accounts::account_record::v1::<user_id>::<scheme>
// with each segment URL-path escaped.
func AccountRecordCacheKey(userID string, scheme core.AccountScheme) (string, error) {
	userID = strings.TrimSpace(userID)
	scheme = core.NormalizeScheme(scheme)
	if userID == "" {
		return "", fmt.Errorf("sqlstore: user id is required")
	}
	if scheme == "" {
		return "", fmt.Errorf("sqlstore: account scheme is required")
	}
	return strings.Join([]string{
		accountRecordCacheKeyPrefix,
		url.PathEscape(userID),
		url.PathEscape(string(scheme)),
	}, "::"), nil
}

func (s *CachedAccountRecordStore) Get(ctx context.Context, userID string, scheme core.AccountScheme) (AccountRecord, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return AccountRecord{}, fmt.Errorf("sqlstore: cached account record store is not configured")
	}
	cacheKey, err := AccountRecordCacheKey(userID, scheme)
	if err != nil {
		return AccountRecord{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (AccountRecord, error) {
		return s.base.Get(ctx, userID, scheme)
	})
}

func (s *CachedAccountRecordStore) LoadSerialized(ctx context.Context, userID string, scheme core.AccountScheme) (string, error) {
	record, err := s.Get(ctx, userID, scheme)
	if err != nil {
		return "", err
	}
	return record.CredsJSON, nil
}

func (s *CachedAccountRecordStore) Save(ctx context.Context, userID string, account core.Account) (AccountRecord, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return AccountRecord{}, fmt.Errorf("sqlstore: cached account record store is not configured")
	}
	saved, err := s.base.Save(ctx, userID, account)
	if err != nil {
		return AccountRecord{}, err
	}
	if err := s.invalidate(ctx, saved.UserID, saved.Scheme); err != nil {
		return AccountRecord{}, err
	}
	return saved, nil
}

func (s *CachedAccountRecordStore) Delete(ctx context.Context, userID string, scheme core.AccountScheme) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached account record store is not configured")
	}
	if err := s.base.Delete(ctx, userID, scheme); err != nil {
		return err
	}
	return s.invalidate(ctx, userID, scheme)
}

func (s *CachedAccountRecordStore) invalidate(ctx context.Context, userID string, scheme core.AccountScheme) error {
	cacheKey, err := AccountRecordCacheKey(userID, scheme)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var (
	_ AccountRecordRepository = (*AccountRecordStore)(nil)
	_ AccountRecordRepository = (*CachedAccountRecordStore)(nil)
)
