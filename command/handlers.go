package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-accounts/core"
)

type TokenService interface {
	EnsureTokens(ctx context.Context, account core.Account, existing core.Account) (bool, error)
}

type ExchangeTokenCommand struct {
	service TokenService
}

func NewExchangeTokenCommand(service TokenService) *ExchangeTokenCommand {
	return &ExchangeTokenCommand{service: service}
}

func (c *ExchangeTokenCommand) Execute(ctx context.Context, msg ExchangeTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	regenerated, err := c.service.EnsureTokens(ctx, msg.Account, msg.Existing)
	if err != nil {
		return err
	}
	storeResult(ctx, ExchangeTokenResult{
		Scheme:      msg.Account.Scheme(),
		AccessToken: msg.Account.AccessToken(),
		Regenerated: regenerated,
	})
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
