// Package catalog holds the static list of launchable modules. Adding a
// module means adding its Registration here; nothing else dispatches on names.
package catalog

import (
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules/lifecycletest"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules/singletouch"
)

// Registrations returns the catalog entries in display order.
func Registrations() []modules.Registration {
	return []modules.Registration{
		lifecycletest.Registration(),
		singletouch.Registration(),
	}
}

// Default builds the read-only registry used by the CLI and TUI.
func Default() *modules.Registry {
	return modules.MustNewRegistry(Registrations()...)
}
