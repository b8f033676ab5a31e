package command

import "github.com/goliatone/go-accounts/core"

const (
	TypeEnsureTokens = "accounts.command.tokens.ensure"
)

// ExchangeTokenMessage asks for the account's provider token to be
// regenerated when the account requires it. Existing is the account already
// stored for the user, if any.
type ExchangeTokenMessage struct {
	Account  core.Account
	Existing core.Account
}

func (ExchangeTokenMessage) Type() string { return TypeEnsureTokens }

func (m ExchangeTokenMessage) Validate() error {
	if m.Account == nil {
		return commandValidationError("account", "account is required")
	}
	return nil
}

// ExchangeTokenResult is stored in the go-command result collector after a
// successful execution.
type ExchangeTokenResult struct {
	Scheme      core.AccountScheme
	AccessToken string
	Regenerated bool
}
