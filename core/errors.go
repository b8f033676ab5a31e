package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	AccountErrorBadInput            = "ACCOUNTS_BAD_INPUT"
	AccountErrorSchemeNotFound      = "ACCOUNTS_SCHEME_NOT_FOUND"
	AccountErrorConstructionFailed  = "ACCOUNTS_CONSTRUCTION_FAILED"
	AccountErrorTokenExchangeFailed = "ACCOUNTS_TOKEN_EXCHANGE_FAILED"
	AccountErrorRecordNotFound      = "ACCOUNTS_RECORD_NOT_FOUND"
	AccountErrorExternalFailure     = "ACCOUNTS_EXTERNAL_FAILURE"
	AccountErrorInternal            = "ACCOUNTS_INTERNAL_ERROR"
)

func accountErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureAccountErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "scheme") && strings.Contains(msg, "not registered"):
		return newAccountError(err.Error(), goerrors.CategoryNotFound, AccountErrorSchemeNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must not"):
		return newAccountError(err.Error(), goerrors.CategoryBadInput, AccountErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureAccountErrorEnvelope(mapped)
}

func newAccountError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureAccountErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func wrapAccountError(source error, category goerrors.Category, message string, textCode string) *goerrors.Error {
	return ensureAccountErrorEnvelope(
		goerrors.Wrap(source, category, message).
			WithTextCode(textCode),
	)
}

// SchemeNotFoundError reports a scheme with no registered factory.
func SchemeNotFoundError(scheme AccountScheme) error {
	return newAccountError(
		"core: account scheme "+string(scheme)+" not registered",
		goerrors.CategoryNotFound,
		AccountErrorSchemeNotFound,
	).WithMetadata(map[string]any{"scheme": string(scheme)})
}

// ConstructionError reports an account that could not be built. It carries
// no further categorization; hosts usually treat it as failed authentication.
func ConstructionError(scheme AccountScheme, source error) error {
	message := "core: could not construct " + string(scheme) + " account"
	var err *goerrors.Error
	if source == nil {
		err = newAccountError(message, goerrors.CategoryAuth, AccountErrorConstructionFailed)
	} else {
		err = wrapAccountError(source, goerrors.CategoryAuth, message, AccountErrorConstructionFailed)
	}
	return err.WithMetadata(map[string]any{"scheme": string(scheme)})
}

func tokenExchangeError(scheme AccountScheme, source error) error {
	return wrapAccountError(
		source,
		goerrors.CategoryExternal,
		"core: "+string(scheme)+" token exchange failed",
		AccountErrorTokenExchangeFailed,
	).WithMetadata(map[string]any{"scheme": string(scheme)})
}

func ensureAccountErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = accountHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultAccountTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultAccountTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return AccountErrorBadInput
	case goerrors.CategoryNotFound:
		return AccountErrorSchemeNotFound
	case goerrors.CategoryAuth:
		return AccountErrorConstructionFailed
	case goerrors.CategoryExternal:
		return AccountErrorExternalFailure
	default:
		return AccountErrorInternal
	}
}

func accountHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
