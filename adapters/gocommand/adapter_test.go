package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	accountcommand "github.com/goliatone/go-accounts/command"
	"github.com/goliatone/go-accounts/core"
	accountquery "github.com/goliatone/go-accounts/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "accounts.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "accounts.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "accounts.command.test" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
	if err := ValidateMessageContract(accountcommand.ExchangeTokenMessage{}); err == nil {
		t.Fatalf("expected missing account to fail validation")
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	sub, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

type tokenAccount struct {
	token       string
	regenerate  bool
	exchangedTo string
}

func (a *tokenAccount) Scheme() core.AccountScheme                { return core.SchemeFacebook }
func (*tokenAccount) OwningAccountsNeedCloudFolderName() bool     { return false }
func (a *tokenAccount) AccessToken() string                       { return a.token }
func (*tokenAccount) CreationUser() core.AccountCreationUser      { return nil }
func (*tokenAccount) Serialize() (string, error)                  { return "{}", nil }
func (a *tokenAccount) NeedsTokenRegeneration(core.Account) bool  { return a.regenerate }
func (*tokenAccount) Merge(core.Account)                          {}
func (a *tokenAccount) ExchangeToken(_ context.Context, done func(error)) {
	a.token = a.exchangedTo
	done(nil)
}

type tokenService struct{}

func (tokenService) EnsureTokens(ctx context.Context, account core.Account, existing core.Account) (bool, error) {
	if !account.NeedsTokenRegeneration(existing) {
		return false, nil
	}
	var exchangeErr error
	account.ExchangeToken(ctx, func(err error) { exchangeErr = err })
	return exchangeErr == nil, exchangeErr
}

type headerBuilder struct{}

func (headerBuilder) AccountFromHeaders(
	_ context.Context,
	_ core.AccountScheme,
	headers core.AccountHeaders,
	_ core.AccountCreationUser,
	_ core.AccountDelegate,
) (core.Account, error) {
	token, _ := headers.Lookup(core.HTTPOAuth2AccessTokenKey)
	return &tokenAccount{token: token}, nil
}

func (headerBuilder) AccountFromJSON(
	context.Context,
	core.AccountScheme,
	string,
	core.AccountCreationUser,
	core.AccountDelegate,
) (core.Account, error) {
	return &tokenAccount{}, nil
}

func TestRegisterAccountHandlers_DispatchesCommandAndQuery(t *testing.T) {
	subs, err := RegisterAccountHandlers(NewRegistryAdapter(nil), AccountHandlers{
		Tokens:  tokenService{},
		Builder: headerBuilder{},
	})
	if err != nil {
		t.Fatalf("register account handlers: %v", err)
	}
	defer subs.Unsubscribe()
	if len(subs) != 2 {
		t.Fatalf("expected command and headers query subscriptions, got %d", len(subs))
	}

	account, err := Query[accountquery.AccountFromHeadersMessage, core.Account](context.Background(), accountquery.AccountFromHeadersMessage{
		Scheme:  core.SchemeFacebook,
		Headers: core.AccountHeaders{"Access_Token": "short"},
	})
	if err != nil {
		t.Fatalf("query account: %v", err)
	}
	if account.AccessToken() != "short" {
		t.Fatalf("expected header token, got %q", account.AccessToken())
	}

	typed := account.(*tokenAccount)
	typed.regenerate = true
	typed.exchangedTo = "long"
	collector := command.NewResult[accountcommand.ExchangeTokenResult]()
	ctx := command.ContextWithResult(context.Background(), collector)
	if err := Dispatch(ctx, accountcommand.ExchangeTokenMessage{Account: account}); err != nil {
		t.Fatalf("dispatch exchange: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected exchange result")
	}
	if result.AccessToken != "long" || !result.Regenerated {
		t.Fatalf("unexpected exchange result %#v", result)
	}
}

func TestRegisterAccountHandlers_RequiresDependencies(t *testing.T) {
	if _, err := RegisterAccountHandlers(NewRegistryAdapter(nil), AccountHandlers{Builder: headerBuilder{}}); err == nil {
		t.Fatalf("expected missing token service error")
	}
	if _, err := RegisterAccountHandlers(NewRegistryAdapter(nil), AccountHandlers{Tokens: tokenService{}}); err == nil {
		t.Fatalf("expected missing builder error")
	}
}
