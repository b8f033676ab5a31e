package query

import (
	"context"

	"github.com/goliatone/go-accounts/core"
)

type AccountBuilder interface {
	AccountFromHeaders(
		ctx context.Context,
		scheme core.AccountScheme,
		headers core.AccountHeaders,
		user core.AccountCreationUser,
		delegate core.AccountDelegate,
	) (core.Account, error)
	AccountFromJSON(
		ctx context.Context,
		scheme core.AccountScheme,
		json string,
		user core.AccountCreationUser,
		delegate core.AccountDelegate,
	) (core.Account, error)
}

// SerializedAccountReader returns the serialized account form stored for a
// user and scheme.
type SerializedAccountReader interface {
	LoadSerialized(ctx context.Context, userID string, scheme core.AccountScheme) (string, error)
}

type AccountFromHeadersQuery struct {
	builder AccountBuilder
}

func NewAccountFromHeadersQuery(builder AccountBuilder) *AccountFromHeadersQuery {
	return &AccountFromHeadersQuery{builder: builder}
}

func (q *AccountFromHeadersQuery) Query(ctx context.Context, msg AccountFromHeadersMessage) (core.Account, error) {
	if q == nil || q.builder == nil {
		return nil, queryDependencyError("query: account builder is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.builder.AccountFromHeaders(ctx, msg.Scheme, msg.Headers, msg.User, msg.Delegate)
}

type AccountFromRecordQuery struct {
	reader  SerializedAccountReader
	builder AccountBuilder
}

func NewAccountFromRecordQuery(reader SerializedAccountReader, builder AccountBuilder) *AccountFromRecordQuery {
	return &AccountFromRecordQuery{reader: reader, builder: builder}
}

func (q *AccountFromRecordQuery) Query(ctx context.Context, msg AccountFromRecordMessage) (core.Account, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: account record reader is required")
	}
	if q.builder == nil {
		return nil, queryDependencyError("query: account builder is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	serialized, err := q.reader.LoadSerialized(ctx, msg.UserID, msg.Scheme)
	if err != nil {
		return nil, err
	}
	return q.builder.AccountFromJSON(ctx, msg.Scheme, serialized, msg.User, msg.Delegate)
}
