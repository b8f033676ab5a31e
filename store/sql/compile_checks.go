package sqlstore

import "github.com/goliatone/go-accounts/query"

var (
	_ query.SerializedAccountReader = (*AccountRecordStore)(nil)
	_ query.SerializedAccountReader = (*CachedAccountRecordStore)(nil)
)
