// Package fit is the render-time half of fittext.
//
// A generated accessor returns the ordered candidate renderings an author
// maintains for one ContentKey. Select picks the first candidate that fits the
// current layout, falling back to the last one so some text is always shown:
//
//	candidates := catalog.Texts(key, name, feature)
//	label := fit.Select(candidates, fit.WidthFits(fit.Constraints{Width: 40, Lines: 1}))
//
// Container wraps the same decision for hosts that report constraint changes
// (resize, rotation, type scale) and must re-run the selection each time.
//
// Nothing in this package performs I/O or blocks; every function is safe to
// call from inside a layout pass.
package fit
