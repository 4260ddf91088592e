// Package server implements the gRPC LabelIndexService
package server

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nainya/spanindex/internal/config"
	"github.com/nainya/spanindex/internal/logger"
	"github.com/nainya/spanindex/internal/metrics"
	"github.com/nainya/spanindex/pkg/document"
	"github.com/nainya/spanindex/pkg/labels"
)

// distinctSpan and standardSpan carry request spans for the two engines
type distinctSpan struct {
	labels.Base
}

type standardSpan struct {
	labels.Base
}

var (
	_ = labels.MustDeclare[*distinctSpan]("request.distinct_span", labels.Distinct)
	_ = labels.MustDeclare[*standardSpan]("request.standard_span", labels.Standard)
)

type requestLimits struct {
	maxTextBytes int
	maxSpans     int
	maxSteps     int
}

// Server implements LabelIndexServer
type Server struct {
	log     *logger.Logger
	metrics *metrics.Metrics
	health  *health.Server
	limits  requestLimits
}

// NewServer creates a new service instance
func NewServer(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *Server {
	return &Server{
		log:     log,
		metrics: m,
		health:  health.NewServer(),
		limits: requestLimits{
			maxTextBytes: cfg.Limits.MaxTextBytes,
			maxSpans:     cfg.Limits.MaxSpans,
			maxSteps:     cfg.Limits.MaxSteps,
		},
	}
}

// Register adds LabelIndexService and the health service to gs
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&ServiceDesc, s)
	healthpb.RegisterHealthServer(gs, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown marks every service as not serving
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

// Query indexes the request's spans on a fresh document and runs its step chain
func (s *Server) Query(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in.AsMap(), s.limits)
	if err != nil {
		return nil, err
	}

	doc := document.NewDocument("request", req.Text,
		document.WithObserver(document.Observers{s.metrics, s.log}))
	s.metrics.DocumentsTotal.Inc()

	var result []labelView
	var kind labels.Kind
	if req.Distinct {
		kind = labels.Distinct
		result, err = execute(ctx, s, doc, req, func(sp labels.Span) *distinctSpan {
			return &distinctSpan{Base: labels.AtSpan(sp)}
		})
	} else {
		kind = labels.Standard
		result, err = execute(ctx, s, doc, req, func(sp labels.Span) *standardSpan {
			return &standardSpan{Base: labels.AtSpan(sp)}
		})
	}
	if err != nil {
		return nil, err
	}

	s.log.IndexLogger(doc.ID()).Debug("query executed").
		Int("spans", len(req.Spans)).
		Int("steps", len(req.Steps)).
		Int("results", len(result)).
		Send()

	return encodeResponse(doc, kind, result)
}

type labelView struct {
	id   int
	span labels.Span
	text string
}

func execute[T labels.Label](ctx context.Context, s *Server, doc *document.Document, req *queryRequest, mk func(labels.Span) T) ([]labelView, error) {
	l, err := document.LabelerOf[T](doc)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "labeler: %v", err)
	}
	for _, sp := range req.Spans {
		if err := l.Add(mk(sp)); err != nil {
			if errors.Is(err, labels.ErrInvalidSpan) {
				return nil, invalid("%v", err)
			}
			return nil, status.Errorf(codes.Internal, "add: %v", err)
		}
	}

	idx := l.Index()
	var picked []T
	for _, st := range req.Steps {
		if err := ctx.Err(); err != nil {
			return nil, status.FromContextError(err).Err()
		}
		s.metrics.RecordQuery(st.Op)

		switch st.Op {
		case OpFirst, OpLast:
			get := idx.First
			if st.Op == OpLast {
				get = idx.Last
			}
			if item, ok := get(); ok {
				picked = []T{item}
			} else {
				picked = []T{}
			}
		default:
			idx = applyStep(idx, st)
		}
	}
	if picked == nil {
		picked = idx.List()
	}

	out := make([]labelView, len(picked))
	for i, item := range picked {
		out[i] = labelView{id: item.ID(), span: item.Location(), text: item.Location().Text(doc.Text())}
	}
	return out, nil
}

// applyStep narrows or reorders idx; arguments were validated during decoding
func applyStep[T labels.Label](idx labels.Index[T], st step) labels.Index[T] {
	switch st.Op {
	case OpContaining:
		return idx.ContainingSpan(st.Span)
	case OpInside:
		return idx.InsideSpan(st.Span)
	case OpBeginsInside:
		return idx.BeginsInsideSpan(st.Span)
	case OpAt:
		return idx.AtLocation(st.Span)
	case OpLeftOf:
		return idx.LeftOf(st.Index)
	case OpRightOf:
		return idx.RightOf(st.Index)
	case OpAscending:
		return idx.Ascending()
	case OpDescending:
		return idx.Descending()
	case OpAscendingStart:
		return idx.AscendingStart()
	case OpDescendingStart:
		return idx.DescendingStart()
	case OpAscendingEnd:
		return idx.AscendingEnd()
	case OpDescendingEnd:
		return idx.DescendingEnd()
	default:
		return idx
	}
}

func encodeResponse(doc *document.Document, kind labels.Kind, result []labelView) (*structpb.Struct, error) {
	items := make([]interface{}, len(result))
	for i, r := range result {
		items[i] = map[string]interface{}{
			"id":    r.id,
			"start": r.span.Start,
			"end":   r.span.End,
			"text":  r.text,
		}
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"document_id": doc.ID(),
		"kind":        kind.String(),
		"count":       len(result),
		"labels":      items,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
