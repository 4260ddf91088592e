// Integration tests for the LabelIndexService gRPC server
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nainya/spanindex/internal/config"
	"github.com/nainya/spanindex/internal/logger"
	"github.com/nainya/spanindex/internal/metrics"
)

const bufSize = 1024 * 1024

const sampleText = "the quick brown fox jumps over the lazy dog"

var (
	distinctSpans = []interface{}{
		[]interface{}{0, 3}, []interface{}{3, 5}, []interface{}{6, 10},
		[]interface{}{11, 15}, []interface{}{16, 20},
	}
	standardSpans = []interface{}{
		[]interface{}{0, 5}, []interface{}{0, 7}, []interface{}{2, 6}, []interface{}{6, 7},
		[]interface{}{6, 8}, []interface{}{9, 10}, []interface{}{9, 13}, []interface{}{9, 13},
	}
)

type testEnv struct {
	client  *Client
	conn    *grpc.ClientConn
	metrics *metrics.Metrics
}

func setupTestServer(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}

	m := metrics.NewMetrics(prometheus.NewRegistry())
	log := logger.Nop()
	server := NewServer(cfg, log, m)

	lis := bufconn.Listen(bufSize)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(GrpcMetricsInterceptor(m, log)))
	server.Register(grpcServer)

	go func() {
		// Serve returns once the server is stopped during cleanup
		_ = grpcServer.Serve(lis)
	}()

	bufDialer := func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(bufDialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err, "dial bufnet")

	t.Cleanup(func() {
		conn.Close()
		server.Shutdown()
		grpcServer.Stop()
		lis.Close()
	})

	return &testEnv{client: NewClient(conn), conn: conn, metrics: m}
}

func query(t *testing.T, env *testEnv, req map[string]interface{}) (map[string]interface{}, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)

	out, err := env.client.Query(context.Background(), in)
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func mustQuery(t *testing.T, env *testEnv, req map[string]interface{}) map[string]interface{} {
	t.Helper()
	resp, err := query(t, env, req)
	require.NoError(t, err)
	return resp
}

// spans pulls [start, end] pairs out of a response in result order
func spans(t *testing.T, resp map[string]interface{}) [][2]int {
	t.Helper()
	raw, ok := resp["labels"].([]interface{})
	require.True(t, ok, "labels must be a list")

	out := make([][2]int, 0, len(raw))
	for _, item := range raw {
		l := item.(map[string]interface{})
		out = append(out, [2]int{int(l["start"].(float64)), int(l["end"].(float64))})
	}
	return out
}

func stepSpan(op string, start, end int) map[string]interface{} {
	return map[string]interface{}{"op": op, "start": start, "end": end}
}

func stepAt(op string, index int) map[string]interface{} {
	return map[string]interface{}{"op": op, "index": index}
}

func stepOnly(op string) map[string]interface{} {
	return map[string]interface{}{"op": op}
}

func request(distinct bool, spanList []interface{}, steps ...map[string]interface{}) map[string]interface{} {
	rawSteps := make([]interface{}, len(steps))
	for i, s := range steps {
		rawSteps[i] = s
	}
	return map[string]interface{}{
		"text":     sampleText,
		"distinct": distinct,
		"spans":    spanList,
		"steps":    rawSteps,
	}
}

func TestDistinctScenario(t *testing.T) {
	env := setupTestServer(t, nil)

	tests := []struct {
		name string
		step map[string]interface{}
		want [][2]int
	}{
		{"containing", stepSpan(OpContaining, 6, 10), [][2]int{{6, 10}}},
		{"inside", stepSpan(OpInside, 1, 16), [][2]int{{3, 5}, {6, 10}, {11, 15}}},
		{"left of", stepAt(OpLeftOf, 10), [][2]int{{0, 3}, {3, 5}, {6, 10}}},
		{"right of", stepAt(OpRightOf, 11), [][2]int{{11, 15}, {16, 20}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := mustQuery(t, env, request(true, distinctSpans, tt.step))
			assert.Equal(t, "distinct", resp["kind"])
			assert.Equal(t, tt.want, spans(t, resp))
			assert.Equal(t, float64(len(tt.want)), resp["count"])
		})
	}
}

func TestStandardScenario(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := mustQuery(t, env, request(false, standardSpans, stepSpan(OpContaining, 2, 4)))
	assert.Equal(t, "standard", resp["kind"])
	assert.Equal(t, [][2]int{{0, 5}, {0, 7}, {2, 6}}, spans(t, resp))

	resp = mustQuery(t, env, request(false, standardSpans, stepSpan(OpBeginsInside, 1, 9)))
	assert.Equal(t, [][2]int{{2, 6}, {6, 7}, {6, 8}}, spans(t, resp))

	resp = mustQuery(t, env, request(false, standardSpans, stepSpan(OpAt, 9, 13)))
	assert.Equal(t, [][2]int{{9, 13}, {9, 13}}, spans(t, resp))

	labels := resp["labels"].([]interface{})
	first := labels[0].(map[string]interface{})
	second := labels[1].(map[string]interface{})
	assert.NotEqual(t, first["id"], second["id"], "duplicates stay distinct labels")
	assert.Equal(t, " bro", first["text"])
}

func TestStepChaining(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := mustQuery(t, env, request(false, standardSpans,
		stepSpan(OpContaining, 2, 4),
		stepOnly(OpDescending),
	))
	assert.Equal(t, [][2]int{{2, 6}, {0, 7}, {0, 5}}, spans(t, resp))

	resp = mustQuery(t, env, request(false, standardSpans,
		stepSpan(OpInside, 0, 10),
		stepAt(OpRightOf, 6),
		stepOnly(OpDescendingStart),
	))
	assert.Equal(t, [][2]int{{9, 10}, {6, 7}, {6, 8}}, spans(t, resp))

	resp = mustQuery(t, env, request(true, distinctSpans,
		stepSpan(OpInside, 0, 20),
		stepOnly(OpDescending),
		stepAt(OpLeftOf, 10),
	))
	assert.Equal(t, [][2]int{{6, 10}, {3, 5}, {0, 3}}, spans(t, resp))
}

func TestFirstAndLast(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := mustQuery(t, env, request(false, standardSpans, stepAt(OpRightOf, 6), stepOnly(OpFirst)))
	assert.Equal(t, [][2]int{{6, 7}}, spans(t, resp))

	resp = mustQuery(t, env, request(false, standardSpans, stepAt(OpLeftOf, 8), stepOnly(OpLast)))
	assert.Equal(t, [][2]int{{6, 8}}, spans(t, resp))

	resp = mustQuery(t, env, request(true, distinctSpans, stepSpan(OpInside, 30, 40), stepOnly(OpFirst)))
	assert.Empty(t, spans(t, resp))
	assert.Equal(t, float64(0), resp["count"])
}

func TestMultiByteTextOnCharacterBoundaries(t *testing.T) {
	env := setupTestServer(t, nil)

	// "é" is two bytes, so "héllo" is six bytes long
	resp := mustQuery(t, env, map[string]interface{}{
		"text":  "héllo wörld",
		"spans": []interface{}{[]interface{}{0, 6}, []interface{}{7, 13}},
	})
	labels := resp["labels"].([]interface{})
	require.Len(t, labels, 2)
	assert.Equal(t, "héllo", labels[0].(map[string]interface{})["text"])
	assert.Equal(t, "wörld", labels[1].(map[string]interface{})["text"])
}

func TestNoStepsListsEverything(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := mustQuery(t, env, request(false, standardSpans))
	assert.Len(t, spans(t, resp), len(standardSpans))
	assert.NotEmpty(t, resp["document_id"])
}

func TestInvalidRequests(t *testing.T) {
	env := setupTestServer(t, nil)

	tests := []struct {
		name string
		req  map[string]interface{}
		code codes.Code
	}{
		{
			name: "missing text",
			req:  map[string]interface{}{"spans": distinctSpans},
			code: codes.InvalidArgument,
		},
		{
			name: "distinct not a bool",
			req:  map[string]interface{}{"text": sampleText, "distinct": "yes"},
			code: codes.InvalidArgument,
		},
		{
			name: "reversed span",
			req:  request(false, []interface{}{[]interface{}{5, 2}}),
			code: codes.InvalidArgument,
		},
		{
			name: "span past end of text",
			req:  request(false, []interface{}{[]interface{}{40, 60}}),
			code: codes.InvalidArgument,
		},
		{
			name: "span splits a UTF-8 character",
			req:  map[string]interface{}{"text": "héllo", "spans": []interface{}{[]interface{}{0, 2}}},
			code: codes.InvalidArgument,
		},
		{
			name: "malformed span",
			req:  request(false, []interface{}{[]interface{}{1}}),
			code: codes.InvalidArgument,
		},
		{
			name: "fractional position",
			req:  request(false, standardSpans, stepAt(OpLeftOf, 0), map[string]interface{}{"op": OpRightOf, "index": 1.5}),
			code: codes.InvalidArgument,
		},
		{
			name: "reversed query span",
			req:  request(false, standardSpans, stepSpan(OpContaining, 4, 2)),
			code: codes.InvalidArgument,
		},
		{
			name: "negative position",
			req:  request(true, distinctSpans, stepAt(OpLeftOf, -1)),
			code: codes.InvalidArgument,
		},
		{
			name: "unknown op",
			req:  request(true, distinctSpans, stepOnly("sideways")),
			code: codes.InvalidArgument,
		},
		{
			name: "first before another step",
			req:  request(true, distinctSpans, stepOnly(OpFirst), stepOnly(OpDescending)),
			code: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := query(t, env, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err), err.Error())
		})
	}
}

func TestRequestLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.MaxTextBytes = 16
	cfg.Limits.MaxSpans = 2
	cfg.Limits.MaxSteps = 1
	env := setupTestServer(t, cfg)

	_, err := query(t, env, request(true, nil))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err), "text over limit")

	short := func(spanList []interface{}, steps ...map[string]interface{}) map[string]interface{} {
		req := request(true, spanList, steps...)
		req["text"] = "short"
		return req
	}

	_, err = query(t, env, short(distinctSpans))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err), "spans over limit")

	_, err = query(t, env, short(nil, stepOnly(OpAscending), stepOnly(OpDescending)))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err), "steps over limit")

	resp := mustQuery(t, env, short([]interface{}{[]interface{}{0, 5}}, stepOnly(OpFirst)))
	assert.Equal(t, [][2]int{{0, 5}}, spans(t, resp))
}

func TestHealthService(t *testing.T) {
	env := setupTestServer(t, nil)

	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestInterceptorRecordsMetrics(t *testing.T) {
	env := setupTestServer(t, nil)

	mustQuery(t, env, request(false, standardSpans, stepSpan(OpContaining, 2, 4), stepOnly(OpFirst)))
	_, err := query(t, env, request(false, standardSpans, stepOnly("sideways")))
	require.Error(t, err)

	m := env.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GrpcRequestsTotal.WithLabelValues(QueryMethod, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GrpcRequestsTotal.WithLabelValues(QueryMethod, "InvalidArgument")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues(OpContaining)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues(OpFirst)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal))
	assert.Equal(t, float64(len(standardSpans)), testutil.ToFloat64(m.LabelsIndexedTotal.WithLabelValues("standard")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GrpcRequestsInFlight))
}

func TestObservabilityEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.DocumentsTotal.Inc()

	ready := false
	obs := NewObservabilityServer(0, reg, func() bool { return ready }, logger.Nop())
	h := obs.Handler()

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "spanindex", body["service"])

	assert.Equal(t, http.StatusServiceUnavailable, get("/ready").Code)
	ready = true
	assert.Equal(t, http.StatusOK, get("/ready").Code)

	rec = get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spanindex_documents_total 1")
}
