package playlist

import (
	"fmt"
	"strings"
)

// ValidationError describes one problem with a playlist entry. Entry is the
// 1-based position in the clips list, or 0 for problems with the file as a
// whole.
type ValidationError struct {
	Entry   int
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	where := "playlist"
	if e.Entry > 0 {
		where = fmt.Sprintf("entry %d", e.Entry)
	}
	if e.Field != "" {
		where += " " + e.Field
	}
	return where + ": " + e.Message
}

// ValidationErrors collects every entry problem found in one load.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	switch len(errs) {
	case 0:
		return "invalid playlist"
	case 1:
		return errs[0].Error()
	}
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d playlist problems: %s", len(errs), strings.Join(parts, "; "))
}

// Issues returns a copy of the individual problems.
func (errs ValidationErrors) Issues() []ValidationError {
	return append([]ValidationError(nil), errs...)
}
