// ABOUTME: Decoding of Query requests from structpb into typed values
// ABOUTME: Every positional argument is validated before it reaches an index

package server

import (
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nainya/spanindex/pkg/labels"
)

// Query step operations
const (
	OpContaining      = "containing"
	OpInside          = "inside"
	OpBeginsInside    = "begins_inside"
	OpLeftOf          = "left_of"
	OpRightOf         = "right_of"
	OpAt              = "at"
	OpAscending       = "ascending"
	OpDescending      = "descending"
	OpAscendingStart  = "ascending_start"
	OpDescendingStart = "descending_start"
	OpAscendingEnd    = "ascending_end"
	OpDescendingEnd   = "descending_end"
	OpFirst           = "first"
	OpLast            = "last"
)

type stepArgs int

const (
	noArgs stepArgs = iota
	spanArgs
	positionArg
)

var stepOps = map[string]stepArgs{
	OpContaining:      spanArgs,
	OpInside:          spanArgs,
	OpBeginsInside:    spanArgs,
	OpAt:              spanArgs,
	OpLeftOf:          positionArg,
	OpRightOf:         positionArg,
	OpAscending:       noArgs,
	OpDescending:      noArgs,
	OpAscendingStart:  noArgs,
	OpDescendingStart: noArgs,
	OpAscendingEnd:    noArgs,
	OpDescendingEnd:   noArgs,
	OpFirst:           noArgs,
	OpLast:            noArgs,
}

type step struct {
	Op    string
	Span  labels.Span
	Index int
}

type queryRequest struct {
	Text     string
	Distinct bool
	Spans    []labels.Span
	Steps    []step
}

func invalid(format string, args ...interface{}) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

func decodeRequest(m map[string]interface{}, limits requestLimits) (*queryRequest, error) {
	req := &queryRequest{}

	text, ok := m["text"].(string)
	if !ok {
		return nil, invalid("text is required")
	}
	if len(text) > limits.maxTextBytes {
		return nil, status.Errorf(codes.ResourceExhausted, "text is %d bytes, limit %d", len(text), limits.maxTextBytes)
	}
	req.Text = text

	if v, present := m["distinct"]; present {
		b, ok := v.(bool)
		if !ok {
			return nil, invalid("distinct must be a boolean")
		}
		req.Distinct = b
	}

	rawSpans, _ := m["spans"].([]interface{})
	if len(rawSpans) > limits.maxSpans {
		return nil, status.Errorf(codes.ResourceExhausted, "%d spans, limit %d", len(rawSpans), limits.maxSpans)
	}
	for i, raw := range rawSpans {
		pair, ok := raw.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, invalid("spans[%d] must be a [start, end] pair", i)
		}
		s, err := decodeSpan(pair[0], pair[1])
		if err != nil {
			return nil, invalid("spans[%d]: %v", i, err)
		}
		if !onRuneBoundary(text, s.Start) || !onRuneBoundary(text, s.End) {
			return nil, invalid("spans[%d]: %s splits a UTF-8 character", i, s)
		}
		req.Spans = append(req.Spans, s)
	}

	rawSteps, _ := m["steps"].([]interface{})
	if len(rawSteps) > limits.maxSteps {
		return nil, status.Errorf(codes.ResourceExhausted, "%d steps, limit %d", len(rawSteps), limits.maxSteps)
	}
	for i, raw := range rawSteps {
		st, err := decodeStep(raw)
		if err != nil {
			return nil, invalid("steps[%d]: %v", i, err)
		}
		if (st.Op == OpFirst || st.Op == OpLast) && i != len(rawSteps)-1 {
			return nil, invalid("steps[%d]: %s must be the last step", i, st.Op)
		}
		req.Steps = append(req.Steps, st)
	}

	return req, nil
}

func decodeStep(raw interface{}) (step, error) {
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return step{}, fmt.Errorf("must be an object")
	}
	op, _ := fields["op"].(string)
	args, known := stepOps[op]
	if !known {
		return step{}, fmt.Errorf("unknown op %q", op)
	}

	st := step{Op: op}
	switch args {
	case spanArgs:
		s, err := decodeSpan(fields["start"], fields["end"])
		if err != nil {
			return step{}, fmt.Errorf("%s: %w", op, err)
		}
		st.Span = s
	case positionArg:
		i, err := decodeInt(fields["index"])
		if err != nil {
			return step{}, fmt.Errorf("%s: index: %w", op, err)
		}
		if i < 0 {
			return step{}, fmt.Errorf("%s: %w: negative position %d", op, labels.ErrInvalidSpan, i)
		}
		st.Index = i
	}
	return st, nil
}

func decodeSpan(rawStart, rawEnd interface{}) (labels.Span, error) {
	start, err := decodeInt(rawStart)
	if err != nil {
		return labels.Span{}, fmt.Errorf("start: %w", err)
	}
	end, err := decodeInt(rawEnd)
	if err != nil {
		return labels.Span{}, fmt.Errorf("end: %w", err)
	}
	return labels.NewSpan(start, end)
}

// onRuneBoundary reports whether byte offset i does not split a character.
// Offsets past the end are left to the labeler's bounds check.
func onRuneBoundary(text string, i int) bool {
	return i >= len(text) || utf8.RuneStart(text[i])
}

// decodeInt accepts the float64 structpb uses for every number, if integral
func decodeInt(v interface{}) (int, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("expected an integer, got %v", f)
	}
	return int(f), nil
}
