// Package source binds the macro pipeline to UI source files.
//
// It recognizes the two macro forms
//
//	#accessibleText("Hi \(name)! I am testing \(feature)")
//	#accessibleNavigationTitle("Settings", content: { ... })
//
// tokenizes the literal argument into text runs and \( ... ) interpolations
// (escapes decoded), hands it to the literal segmenter and the rewriter, and
// splices the emitted accessor call back into the file. Comments and ordinary
// string literals are skipped; macros nested inside a title's content block
// are expanded too.
//
// Multi-line ("""), raw (#"..."#) and concatenated literals are not string
// literals for this purpose and fail with errors.ErrNotAStringLiteral.
package source
