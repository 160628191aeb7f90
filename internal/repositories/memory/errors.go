package memory

import "errors"

// errInjected is returned by the Fail* injection hooks.
var errInjected = errors.New("injected storage failure")

// ErrInjected exposes the injected failure for test assertions.
var ErrInjected = errInjected
