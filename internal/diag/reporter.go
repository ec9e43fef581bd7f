package diag

import (
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// Reporter is the minimal sink contract passes emit through.
// Implementations: BagReporter (collects), NopReporter (discards).
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes every diagnostic into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything; used by probing resolutions that must not
// surface diagnostics (e.g. overload candidate checks).
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// Error is a convenience for emitting an error-severity diagnostic.
func Error(r Reporter, code Code, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(NewError(code, primary, msg))
}

// Warning is a convenience for emitting a warning-severity diagnostic.
func Warning(r Reporter, code Code, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(NewWarning(code, primary, msg))
}
