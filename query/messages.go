package query

import (
	"strings"

	"github.com/goliatone/go-accounts/core"
)

const (
	TypeAccountFromHeaders = "accounts.query.account.from_headers"
	TypeAccountFromRecord  = "accounts.query.account.from_record"
)

type AccountFromHeadersMessage struct {
	Scheme   core.AccountScheme
	Headers  core.AccountHeaders
	User     core.AccountCreationUser
	Delegate core.AccountDelegate
}

func (AccountFromHeadersMessage) Type() string { return TypeAccountFromHeaders }

func (m AccountFromHeadersMessage) Validate() error {
	if core.NormalizeScheme(m.Scheme) == "" {
		return queryValidationError("scheme", "scheme is required")
	}
	return nil
}

// AccountFromRecordMessage loads the account a user stored for a scheme.
type AccountFromRecordMessage struct {
	UserID   string
	Scheme   core.AccountScheme
	User     core.AccountCreationUser
	Delegate core.AccountDelegate
}

func (AccountFromRecordMessage) Type() string { return TypeAccountFromRecord }

func (m AccountFromRecordMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return queryValidationError("user_id", "user id is required")
	}
	if core.NormalizeScheme(m.Scheme) == "" {
		return queryValidationError("scheme", "scheme is required")
	}
	return nil
}
