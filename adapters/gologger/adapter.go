package gologger

import (
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-accounts/core"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// AccountLogger returns the logger an account adapter should use for scheme,
// named "accounts.<scheme>" when a provider is available.
func AccountLogger(provider glog.LoggerProvider, logger glog.Logger, scheme core.AccountScheme) glog.Logger {
	name := "accounts"
	normalized := core.NormalizeScheme(scheme)
	if normalized != "" {
		name += "." + string(normalized)
	}
	resolvedProvider, resolved := Resolve(name, provider, logger)
	if resolvedProvider != nil {
		if named := resolvedProvider.GetLogger(name); named != nil {
			resolved = named
		}
	}
	resolved = glog.Ensure(resolved)
	if fields, ok := resolved.(glog.FieldsLogger); ok && normalized != "" {
		return fields.WithFields(map[string]any{"scheme": string(normalized)})
	}
	return resolved
}
