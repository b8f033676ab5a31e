package devkit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-accounts/core"
)

func ValidateTransportAdapterConformance(
	ctx context.Context,
	adapter core.TransportAdapter,
	request core.TransportRequest,
) error {
	if adapter == nil {
		return fmt.Errorf("devkit: transport adapter is required")
	}
	if strings.TrimSpace(adapter.Kind()) == "" {
		return fmt.Errorf("devkit: transport adapter kind is required")
	}
	_, err := adapter.Do(ctx, request)
	return err
}

// ValidateAccountFactoryConformance checks the parts of the account contract
// every scheme must honor: a stable scheme, a JSON object serialized form that
// can be read back, and pass-through of the creation user.
func ValidateAccountFactoryConformance(
	factory core.AccountFactory,
	configuration any,
	user core.AccountCreationUser,
) error {
	if factory == nil {
		return fmt.Errorf("devkit: account factory is required")
	}
	scheme := core.NormalizeScheme(factory.Scheme())
	if scheme == "" {
		return fmt.Errorf("devkit: account factory scheme is required")
	}

	account, err := factory.FromProperties(core.AccountProperties{
		Scheme:     scheme,
		Properties: map[string]any{},
	}, user, configuration, nil)
	if err != nil {
		return fmt.Errorf("devkit: build account from properties: %w", err)
	}
	if account == nil {
		return fmt.Errorf("devkit: factory returned nil account")
	}
	if account.Scheme() != scheme {
		return fmt.Errorf("devkit: expected account scheme %q, got %q", scheme, account.Scheme())
	}
	if account.CreationUser() != user {
		return fmt.Errorf("devkit: creation user was not passed through")
	}

	serialized, err := account.Serialize()
	if err != nil {
		return fmt.Errorf("devkit: serialize account: %w", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(serialized), &decoded); err != nil {
		return fmt.Errorf("devkit: serialized form is not a json object: %w", err)
	}

	restored, err := factory.FromJSON(serialized, user, configuration, nil)
	if err != nil {
		return fmt.Errorf("devkit: restore account from json: %w", err)
	}
	if restored == nil || restored.Scheme() != scheme {
		return fmt.Errorf("devkit: restored account has wrong scheme")
	}
	return nil
}
