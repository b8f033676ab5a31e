package query

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/providers/facebook"
)

type mapReader struct {
	records map[string]string
	calls   int
}

func (r *mapReader) LoadSerialized(_ context.Context, userID string, scheme core.AccountScheme) (string, error) {
	r.calls++
	value, ok := r.records[userID+"/"+string(scheme)]
	if !ok {
		return "", errors.New("record not found")
	}
	return value, nil
}

func newFacebookService(t *testing.T) *core.Service {
	t.Helper()
	svc, err := core.NewService(core.Config{Mode: core.ModeTesting}, core.WithAccountFactory(facebook.NewFactory()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestAccountFromHeadersQuery_BuildsAccount(t *testing.T) {
	q := NewAccountFromHeadersQuery(newFacebookService(t))
	account, err := q.Query(context.Background(), AccountFromHeadersMessage{
		Scheme:  core.SchemeFacebook,
		Headers: core.AccountHeaders{core.HTTPOAuth2AccessTokenKey: "short"},
		User:    "user-1",
	})
	if err != nil {
		t.Fatalf("query account: %v", err)
	}
	if account.AccessToken() != "short" || account.CreationUser() != "user-1" {
		t.Fatalf("unexpected account state %q %#v", account.AccessToken(), account.CreationUser())
	}
	if account.NeedsTokenRegeneration(nil) {
		t.Fatalf("expected testing mode from service config to reach the account")
	}
}

func TestAccountFromRecordQuery_RestoresWithoutToken(t *testing.T) {
	reader := &mapReader{records: map[string]string{"u1/facebook": "{}"}}
	q := NewAccountFromRecordQuery(reader, newFacebookService(t))

	account, err := q.Query(context.Background(), AccountFromRecordMessage{UserID: "u1", Scheme: core.SchemeFacebook})
	if err != nil {
		t.Fatalf("query record: %v", err)
	}
	if account.Scheme() != core.SchemeFacebook || account.AccessToken() != "" {
		t.Fatalf("unexpected restored account %q %q", account.Scheme(), account.AccessToken())
	}

	if _, err := q.Query(context.Background(), AccountFromRecordMessage{UserID: "u2", Scheme: core.SchemeFacebook}); err == nil {
		t.Fatalf("expected missing record error")
	}
}

func TestQueries_ValidateAndDependencies(t *testing.T) {
	q := NewAccountFromRecordQuery(&mapReader{}, newFacebookService(t))
	_, err := q.Query(context.Background(), AccountFromRecordMessage{Scheme: core.SchemeFacebook})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation envelope, got %v", err)
	}

	var nilQuery *AccountFromHeadersQuery
	_, err = nilQuery.Query(context.Background(), AccountFromHeadersMessage{Scheme: core.SchemeFacebook})
	if !goerrors.As(err, &rich) || rich.TextCode != core.AccountErrorInternal {
		t.Fatalf("expected dependency envelope, got %v", err)
	}

	if err := (AccountFromHeadersMessage{}).Validate(); err == nil {
		t.Fatalf("expected missing scheme validation error")
	}
}
