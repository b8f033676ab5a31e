package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-accounts/core"
)

var (
	_ gocmd.Querier[AccountFromHeadersMessage, core.Account] = (*AccountFromHeadersQuery)(nil)
	_ gocmd.Querier[AccountFromRecordMessage, core.Account]  = (*AccountFromRecordQuery)(nil)
)
