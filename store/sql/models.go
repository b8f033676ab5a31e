package sqlstore

import (
	"time"

	"github.com/goliatone/go-accounts/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountRecord is the stored form of a user's account for one scheme.
// CredsJSON holds exactly what the account serialized.
type AccountRecord struct {
	ID        string
	UserID    string
	Scheme    core.AccountScheme
	CredsJSON string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type accountRecord struct {
	bun.BaseModel `bun:"table:account_records,alias:ar"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Scheme    string    `bun:"scheme,notnull"`
	CredsJSON string    `bun:"creds_json,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newAccountRecord(userID string, scheme core.AccountScheme, credsJSON string, now time.Time) *accountRecord {
	return &accountRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Scheme:    string(scheme),
		CredsJSON: credsJSON,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *accountRecord) toDomain() AccountRecord {
	if r == nil {
		return AccountRecord{}
	}
	return AccountRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		Scheme:    core.AccountScheme(r.Scheme),
		CredsJSON: r.CredsJSON,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
