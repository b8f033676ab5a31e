package accounts

import (
	"github.com/goliatone/go-accounts/adapters/gologger"
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/providers/facebook"
	"github.com/goliatone/go-accounts/transport"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type Account = core.Account
type AccountScheme = core.AccountScheme
type AccountHeaders = core.AccountHeaders
type AccountProperties = core.AccountProperties
type AccountDelegate = core.AccountDelegate
type AccountCreationUser = core.AccountCreationUser
type RuntimeMode = core.RuntimeMode

const (
	SchemeFacebook = core.SchemeFacebook

	ModeProduction = core.ModeProduction
	ModeTesting    = core.ModeTesting
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithRegistry        = core.WithRegistry
	WithAccountFactory  = core.WithAccountFactory
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

// Setup builds a service and registers the Facebook scheme on it unless a
// Facebook factory was already supplied. The factory talks to the Graph API
// over a REST adapter sized from the resolved transport config.
func Setup(cfg Config, opts ...Option) (*Service, error) {
	svc, err := core.NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if _, ok := svc.Registry().Get(core.SchemeFacebook); ok {
		return svc, nil
	}
	if err := svc.Register(FacebookFactory(svc.Config(), svc.Logger())); err != nil {
		return nil, err
	}
	return svc, nil
}

// FacebookFactory returns a Facebook account factory whose accounts share one
// API caller built from cfg.
func FacebookFactory(cfg Config, logger core.Logger) *facebook.Factory {
	adapter := transport.NewRESTAdapterFromConfig(cfg.Transport)
	caller := transport.NewAPICall(cfg.FacebookBaseURL(), adapter)
	caller.Timeout = cfg.Transport.Timeout
	caller.MaxResponseBodyBytes = cfg.Transport.MaxResponseBodyBytes
	return facebook.NewFactory(
		facebook.WithAPICaller(caller),
		facebook.WithLogger(gologger.AccountLogger(nil, logger, core.SchemeFacebook)),
	)
}
