package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // lookup miss, invalid positions file
	ExitCommandError = 2 // bad flags, unreadable config
)

// ExitError carries the exit code a command wants.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes data as JSON, or calls text to render it for humans.
func (f *OutputFormatter) Success(data any, text func(w io.Writer) error) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	return text(f.Writer)
}

// Error reports a failure in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

// table aligns columns when w is a terminal and emits plain tab separated
// rows otherwise, so output stays easy to cut and awk.
type table struct {
	tw *tabwriter.Writer
	w  io.Writer
}

func newTable(w io.Writer) *table {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	}
	return &table{w: w}
}

func (t *table) row(cols ...any) {
	var out io.Writer = t.w
	if t.tw != nil {
		out = t.tw
	}
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(out, "\t")
		}
		fmt.Fprint(out, c)
	}
	fmt.Fprintln(out)
}

func (t *table) flush() error {
	if t.tw != nil {
		return t.tw.Flush()
	}
	return nil
}
