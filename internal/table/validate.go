package table

import (
	stderrors "errors"
	"fmt"

	"git.home.luguber.info/inful/fittext/internal/contentkey"
	"git.home.luguber.info/inful/fittext/pkg/fit"
)

// Validate checks the structural invariants a persisted table must satisfy
// before it may be merged: known version, well-formed keys, non-empty
// candidate lists and parseable templates. All problems are reported.
func Validate(t Table) error {
	var errs []error
	if t.Version != FormatVersion {
		errs = append(errs, fmt.Errorf("unsupported table version %d (want %d)", t.Version, FormatVersion))
	}
	errs = append(errs, validateSection("texts", t.Texts)...)
	errs = append(errs, validateSection("titles", t.Titles)...)
	return stderrors.Join(errs...)
}

func validateSection(name string, section map[contentkey.ContentKey]Entry) []error {
	var errs []error
	for key, e := range section {
		if _, err := contentkey.Parse(string(key)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if len(e.Renderings) == 0 {
			errs = append(errs, fmt.Errorf("%s.%s: no renderings", name, key.Short()))
			continue
		}
		for i, r := range e.Renderings {
			if _, err := fit.ParseTemplate(r); err != nil {
				errs = append(errs, fmt.Errorf("%s.%s.renderings[%d]: %w", name, key.Short(), i, err))
			}
		}
	}
	return errs
}
