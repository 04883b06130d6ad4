package score

import (
	"fmt"
	"strings"
)

// InputShapeError reports score data that violates the nesting or value
// contract. Path names the offending keys from the root.
type InputShapeError struct {
	Path   []string
	Reason string
}

func (e *InputShapeError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("invalid score data: %s", e.Reason)
	}
	return fmt.Sprintf("invalid score data at %s: %s", strings.Join(e.Path, "."), e.Reason)
}

func shapeErr(path []string, format string, args ...any) error {
	return &InputShapeError{Path: append([]string(nil), path...), Reason: fmt.Sprintf(format, args...)}
}
