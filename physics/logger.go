// Copyright © 2024 Galvanized Logic Inc.

package physics

import "log/slog"

// logger is the package-scoped diagnostic sink. Nothing in the hot solver
// loop logs per-iteration; this is reserved for the boundary conditions
// named in §7/§8 -- TOI iteration-cap hits, tree freelist growth, an
// island whose position phase does not converge -- plus one line per
// World.Step.
var logger = slog.Default()

// SetLogger overrides the package's diagnostic logger. Pass nil to restore
// the default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger = l
}
