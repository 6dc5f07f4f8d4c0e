package codec

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

type eventKind int

const (
	eventStreamStart eventKind = iota
	eventStreamEnd
	eventMappingStart
	eventMappingEnd
	eventSequenceStart
	eventSequenceEnd
	eventScalar
	eventAlias
)

func (k eventKind) String() string {
	switch k {
	case eventStreamStart:
		return "stream start"
	case eventStreamEnd:
		return "stream end"
	case eventMappingStart:
		return "mapping"
	case eventMappingEnd:
		return "end of mapping"
	case eventSequenceStart:
		return "sequence"
	case eventSequenceEnd:
		return "end of sequence"
	case eventScalar:
		return "scalar"
	case eventAlias:
		return "alias"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

type event struct {
	kind   eventKind
	value  string
	tag    string
	anchor string
	line   int
	column int
}

// scan tokenises r with yaml.v3 and hands the document to emit as a flat
// event sequence. Only the first document is read; a second one is an error.
func scan(r io.Reader, emit func(event) error) error {
	dec := yaml.NewDecoder(r)

	var doc yaml.Node
	err := dec.Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return syntaxError(err)
	}
	if err := emit(event{kind: eventStreamStart, line: 1, column: 1}); err != nil {
		return err
	}

	endLine, endColumn := 1, 1
	if err == nil {
		if err := walk(&doc, emit); err != nil {
			return err
		}
		endLine, endColumn = doc.Line, doc.Column

		var extra yaml.Node
		if err := dec.Decode(&extra); err == nil {
			return &ParseError{Line: extra.Line, Column: extra.Column, Msg: "multiple documents are not supported"}
		} else if !errors.Is(err, io.EOF) {
			return syntaxError(err)
		}
	}
	return emit(event{kind: eventStreamEnd, line: endLine, column: endColumn})
}

func walk(n *yaml.Node, emit func(event) error) error {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, child := range n.Content {
			if err := walk(child, emit); err != nil {
				return err
			}
		}
		return nil
	case yaml.MappingNode:
		return walkCollection(n, eventMappingStart, eventMappingEnd, emit)
	case yaml.SequenceNode:
		return walkCollection(n, eventSequenceStart, eventSequenceEnd, emit)
	case yaml.ScalarNode:
		return emit(event{kind: eventScalar, value: n.Value, tag: n.ShortTag(), anchor: n.Anchor, line: n.Line, column: n.Column})
	case yaml.AliasNode:
		return emit(event{kind: eventAlias, value: n.Value, line: n.Line, column: n.Column})
	default:
		return nil
	}
}

func walkCollection(n *yaml.Node, start, end eventKind, emit func(event) error) error {
	if err := emit(event{kind: start, tag: n.ShortTag(), anchor: n.Anchor, line: n.Line, column: n.Column}); err != nil {
		return err
	}
	for _, child := range n.Content {
		if err := walk(child, emit); err != nil {
			return err
		}
	}
	return emit(event{kind: end, line: n.Line, column: n.Column})
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// syntaxError converts a yaml.v3 scanner error into a ParseError. yaml.v3
// reports the line only, so Column is left at zero.
func syntaxError(err error) *ParseError {
	perr := &ParseError{Msg: err.Error()}
	if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			perr.Line = line
		}
	}
	return perr
}
