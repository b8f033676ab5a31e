package accounts

import (
	"fmt"

	accountcommand "github.com/goliatone/go-accounts/command"
	accountquery "github.com/goliatone/go-accounts/query"
)

type CommandQueryService interface {
	accountcommand.TokenService
	accountquery.AccountBuilder
}

type Commands struct {
	EnsureTokens *accountcommand.ExchangeTokenCommand
}

type Queries struct {
	AccountFromHeaders *accountquery.AccountFromHeadersQuery
	AccountFromRecord  *accountquery.AccountFromRecordQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	recordReader accountquery.SerializedAccountReader
}

// WithRecordReader enables the account-from-record query.
func WithRecordReader(reader accountquery.SerializedAccountReader) FacadeOption {
	return func(options *facadeOptions) {
		options.recordReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("accounts: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.recordReader == nil {
		if reader, ok := service.(accountquery.SerializedAccountReader); ok {
			cfg.recordReader = reader
		}
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		EnsureTokens: accountcommand.NewExchangeTokenCommand(service),
	}
	facade.queries = Queries{
		AccountFromHeaders: accountquery.NewAccountFromHeadersQuery(service),
	}
	if cfg.recordReader != nil {
		facade.queries.AccountFromRecord = accountquery.NewAccountFromRecordQuery(cfg.recordReader, service)
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
