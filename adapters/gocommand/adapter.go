package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	accountcommand "github.com/goliatone/go-accounts/command"
	"github.com/goliatone/go-accounts/core"
	accountquery "github.com/goliatone/go-accounts/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// Subscriptions groups dispatcher subscriptions so they can be released
// together.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterCommand(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// AccountHandlers holds what the account command and queries run against.
// Reader is optional; without it the record query is not registered.
type AccountHandlers struct {
	Tokens  accountcommand.TokenService
	Builder accountquery.AccountBuilder
	Reader  accountquery.SerializedAccountReader
}

// RegisterAccountHandlers subscribes the token command and account queries
// on the dispatcher. On failure every subscription made so far is released.
func RegisterAccountHandlers(
	adapter *RegistryAdapter,
	handlers AccountHandlers,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	if handlers.Tokens == nil {
		return nil, fmt.Errorf("gocommand: token service is required")
	}
	if handlers.Builder == nil {
		return nil, fmt.Errorf("gocommand: account builder is required")
	}

	var subs Subscriptions
	sub, err := RegisterAndSubscribe[accountcommand.ExchangeTokenMessage](
		adapter, accountcommand.NewExchangeTokenCommand(handlers.Tokens), runnerOpts...)
	if err != nil {
		return nil, err
	}
	subs = append(subs, sub)

	sub, err = RegisterAndSubscribeQuery[accountquery.AccountFromHeadersMessage, core.Account](
		adapter, accountquery.NewAccountFromHeadersQuery(handlers.Builder), runnerOpts...)
	if err != nil {
		subs.Unsubscribe()
		return nil, err
	}
	subs = append(subs, sub)

	if handlers.Reader != nil {
		sub, err = RegisterAndSubscribeQuery[accountquery.AccountFromRecordMessage, core.Account](
			adapter, accountquery.NewAccountFromRecordQuery(handlers.Reader, handlers.Builder), runnerOpts...)
		if err != nil {
			subs.Unsubscribe()
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
