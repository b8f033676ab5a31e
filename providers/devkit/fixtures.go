package devkit

import (
	"sync"

	"github.com/goliatone/go-accounts/core"
)

// DelegateFixture records every error an account reports to its delegate.
type DelegateFixture struct {
	mu     sync.Mutex
	errors []error
}

func NewDelegateFixture() *DelegateFixture {
	return &DelegateFixture{}
}

func (d *DelegateFixture) AccountError(_ core.Account, err error) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, err)
}

func (d *DelegateFixture) Errors() []error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]error(nil), d.errors...)
}

// CreationUserFixture stands in for host user state passed through accounts.
type CreationUserFixture struct {
	UserID string
}

var _ core.AccountDelegate = (*DelegateFixture)(nil)
