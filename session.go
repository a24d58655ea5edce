// Package mlogit orchestrates a single multinomial logit fit: it owns
// the input table and the option bag, and drives tabulation, design
// assembly, and convergence for each model descriptor passed to Fit.
//
// This replaces a global dataset-and-options singleton with an
// explicit handle: a Session is created once per input table and
// reused across however many formulas are fit against it, with no
// process-wide state.
package mlogit

import (
	"os"

	"github.com/mlogit/mlogit/design"
	"github.com/mlogit/mlogit/fit"
	"github.com/mlogit/mlogit/model"
	"github.com/mlogit/mlogit/options"
	"github.com/mlogit/mlogit/table"
	"github.com/mlogit/mlogit/tabulate"
	"github.com/rs/zerolog"
)

// Session binds an input table and an option bag to a logger scoped
// to that session.
type Session struct {
	Table   *table.Table
	Options options.Bag
	Logger  zerolog.Logger
}

// New creates a Session over tbl with opts, building a zerolog logger
// at Debug level when opts.Verbose is set and Info level otherwise.
func New(tbl *table.Table, opts options.Bag) *Session {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return &Session{Table: tbl, Options: opts, Logger: logger}
}

// Fit tabulates desc against the session's table, assembles the
// design matrices, and runs the Newton–Raphson convergence loop,
// returning the resulting report. Design artifacts are local to this
// call and are released normally on return; there is no explicit
// Close, since Go's scoped ownership already frees them.
func (s *Session) Fit(desc *model.Descriptor) *fit.Report {
	for _, w := range desc.Warnings {
		s.Logger.Warn().Msg(w)
	}

	tabs := tabulate.Build(s.Table, desc)
	art := design.Build(tabs, desc, s.Options.Scheme(), s.Table.Names())
	return fit.Run(art, tabs, s.Options.Verbose, s.Logger)
}
