package facebook

import "github.com/goliatone/go-accounts/core"

// Factory registers Facebook credentials with a core.Service. Its options are
// applied to every account it builds.
type Factory struct {
	opts []Option
}

func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: append([]Option(nil), opts...)}
}

func (*Factory) Scheme() core.AccountScheme {
	return providerScheme
}

func (*Factory) PropertiesFromHeaders(headers core.AccountHeaders) map[string]any {
	return PropertiesFromHeaders(headers)
}

func (f *Factory) FromProperties(
	properties core.AccountProperties,
	user core.AccountCreationUser,
	configuration any,
	delegate core.AccountDelegate,
) (core.Account, error) {
	creds, err := FromProperties(properties, user, configuration, delegate, f.options()...)
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (f *Factory) FromJSON(
	json string,
	user core.AccountCreationUser,
	configuration any,
	delegate core.AccountDelegate,
) (core.Account, error) {
	creds, err := FromJSON(json, user, configuration, delegate, f.options()...)
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (f *Factory) options() []Option {
	if f == nil {
		return nil
	}
	return f.opts
}

var _ core.AccountFactory = (*Factory)(nil)
