package codec

import "fmt"

// ParseError describes why a positions document was rejected. Line and
// Column are 1-based; Column is zero when only the line is known.
type ParseError struct {
	Line   int
	Column int
	// State names the parsing context the error was raised in.
	State string
	Msg   string
}

func (e *ParseError) Error() string {
	where := ""
	switch {
	case e.Line > 0 && e.Column > 0:
		where = fmt.Sprintf("line %d, column %d: ", e.Line, e.Column)
	case e.Line > 0:
		where = fmt.Sprintf("line %d: ", e.Line)
	}
	if e.State != "" {
		return fmt.Sprintf("%s%s (while parsing %s)", where, e.Msg, e.State)
	}
	return where + e.Msg
}
