package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service drives the host side of the account flow: build an account from
// request headers or a stored record, regenerate provider tokens when the
// account asks for it, and hand back the serialized form for storage.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	registry        Registry
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("accounts", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("accounts"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = NewSchemeRegistry()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	for _, factory := range builder.factories {
		if err := builder.registry.Register(factory); err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		registry:        builder.registry,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return DefaultConfig()
	}
	return s.config
}

func (s *Service) Logger() Logger {
	if s == nil || s.logger == nil {
		return glog.Nop()
	}
	return s.logger
}

func (s *Service) Registry() Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

func (s *Service) Register(factory AccountFactory) error {
	if s == nil || s.registry == nil {
		return fmt.Errorf("core: service registry is not configured")
	}
	if err := s.registry.Register(factory); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) factory(scheme AccountScheme) (AccountFactory, error) {
	if s == nil || s.registry == nil {
		return nil, fmt.Errorf("core: service registry is not configured")
	}
	scheme = NormalizeScheme(scheme)
	if scheme == "" {
		return nil, newAccountError("core: account scheme is required", goerrors.CategoryBadInput, AccountErrorBadInput)
	}
	factory, ok := s.registry.Get(scheme)
	if !ok || factory == nil {
		return nil, SchemeNotFoundError(scheme)
	}
	return factory, nil
}

// AccountFromHeaders extracts the scheme's properties from inbound request
// headers and builds an account from them.
func (s *Service) AccountFromHeaders(
	ctx context.Context,
	scheme AccountScheme,
	headers AccountHeaders,
	user AccountCreationUser,
	delegate AccountDelegate,
) (account Account, err error) {
	startedAt := time.Now().UTC()
	scheme = NormalizeScheme(scheme)
	defer func() {
		s.observeOperation(ctx, startedAt, "account_from_headers", err, map[string]any{"scheme": string(scheme)})
	}()

	factory, err := s.factory(scheme)
	if err != nil {
		return nil, err
	}
	properties := AccountProperties{
		Scheme:     scheme,
		Properties: factory.PropertiesFromHeaders(headers),
	}
	return s.build(scheme, func() (Account, error) {
		return factory.FromProperties(properties, user, s.config, delegate)
	})
}

func (s *Service) AccountFromProperties(
	ctx context.Context,
	properties AccountProperties,
	user AccountCreationUser,
	delegate AccountDelegate,
) (account Account, err error) {
	startedAt := time.Now().UTC()
	scheme := NormalizeScheme(properties.Scheme)
	defer func() {
		s.observeOperation(ctx, startedAt, "account_from_properties", err, map[string]any{"scheme": string(scheme)})
	}()

	factory, err := s.factory(scheme)
	if err != nil {
		return nil, err
	}
	properties.Scheme = scheme
	return s.build(scheme, func() (Account, error) {
		return factory.FromProperties(properties, user, s.config, delegate)
	})
}

// AccountFromJSON rebuilds an account from the serialized form stored with
// the host account record.
func (s *Service) AccountFromJSON(
	ctx context.Context,
	scheme AccountScheme,
	json string,
	user AccountCreationUser,
	delegate AccountDelegate,
) (account Account, err error) {
	startedAt := time.Now().UTC()
	scheme = NormalizeScheme(scheme)
	defer func() {
		s.observeOperation(ctx, startedAt, "account_from_json", err, map[string]any{"scheme": string(scheme)})
	}()

	factory, err := s.factory(scheme)
	if err != nil {
		return nil, err
	}
	return s.build(scheme, func() (Account, error) {
		return factory.FromJSON(json, user, s.config, delegate)
	})
}

func (s *Service) build(scheme AccountScheme, construct func() (Account, error)) (Account, error) {
	account, err := construct()
	if err != nil {
		return nil, ConstructionError(scheme, err)
	}
	if account == nil {
		return nil, ConstructionError(scheme, nil)
	}
	return account, nil
}

func (s *Service) Serialize(ctx context.Context, account Account) (serialized string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "serialize", err, fields)
	}()

	if account == nil {
		return "", newAccountError("core: account is required", goerrors.CategoryBadInput, AccountErrorBadInput)
	}
	fields["scheme"] = string(account.Scheme())
	serialized, err = account.Serialize()
	if err != nil {
		return "", s.mapError(err)
	}
	return serialized, nil
}

// EnsureTokens runs the account's token generation when the account asks for
// it and reports whether a new token was obtained. It waits for the
// completion or for ctx to end; the exchange itself is not cancelled through
// the account contract.
func (s *Service) EnsureTokens(ctx context.Context, account Account, existing Account) (regenerated bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "ensure_tokens", err, fields)
	}()

	if account == nil {
		return false, newAccountError("core: account is required", goerrors.CategoryBadInput, AccountErrorBadInput)
	}
	scheme := account.Scheme()
	fields["scheme"] = string(scheme)
	if !account.NeedsTokenRegeneration(existing) {
		fields["regenerated"] = false
		return false, nil
	}
	fields["regenerated"] = true

	done := make(chan error, 1)
	account.ExchangeToken(ctx, func(exchangeErr error) {
		select {
		case done <- exchangeErr:
		default:
		}
	})

	select {
	case exchangeErr := <-done:
		if exchangeErr == nil {
			return true, nil
		}
		var rich *goerrors.Error
		if goerrors.As(exchangeErr, &rich) {
			return false, ensureAccountErrorEnvelope(rich)
		}
		return false, tokenExchangeError(scheme, exchangeErr)
	case <-ctx.Done():
		return false, tokenExchangeError(scheme, ctx.Err())
	}
}

// Merge folds newer into existing when both describe the same account.
func (s *Service) Merge(ctx context.Context, existing Account, newer Account) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "merge", err, fields)
	}()

	if existing == nil || newer == nil {
		return newAccountError("core: existing and newer accounts are required", goerrors.CategoryBadInput, AccountErrorBadInput)
	}
	fields["scheme"] = string(existing.Scheme())
	if NormalizeScheme(existing.Scheme()) != NormalizeScheme(newer.Scheme()) {
		return newAccountError(
			fmt.Sprintf("core: cannot merge %s account into %s account", newer.Scheme(), existing.Scheme()),
			goerrors.CategoryBadInput,
			AccountErrorBadInput,
		)
	}
	existing.Merge(newer)
	return nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	mapper := s.errorMapper
	if mapper == nil {
		mapper = defaultErrorMapper
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func schemeTag(fields map[string]any) string {
	value, ok := fields["scheme"]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}
