package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"planline/internal/gemini"
	"planline/internal/planner"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

type fakeLister struct {
	models []gemini.ModelInfo
	err    error
}

func (f fakeLister) ListModels(context.Context) ([]gemini.ModelInfo, error) {
	return f.models, f.err
}

func failingPlanner() planner.Planner {
	p := planner.New(planner.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("connection refused")
	}), []string{"model-a", "model-b"}, 8)
	p.Logger = log.New(io.Discard, "", 0)
	return p
}

func newTestServer(t *testing.T, cfg Config) (*testServer, func()) {
	t.Helper()
	handler, err := New(cfg)
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func TestBreakdownFallsBackToSynthesizedPlan(t *testing.T) {
	srv, cleanup := newTestServer(t, Config{Planner: failingPlanner(), BasePath: "/v1"})
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/breakdown", map[string]any{
		"goal":      "Learn Spanish",
		"timeframe": "2 weeks",
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var body BreakdownResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.GoalID == "" {
		t.Error("goal_id is empty")
	}
	if len(body.Tasks) != 3 {
		t.Fatalf("expected 3 fallback tasks, got %d", len(body.Tasks))
	}
	if body.TotalEstimatedHours != 80 {
		t.Errorf("total = %d, want 80", body.TotalEstimatedHours)
	}
	sum := 0
	for _, task := range body.Tasks {
		if task.Status != "pending" {
			t.Errorf("task %s status = %q", task.ID, task.Status)
		}
		sum += task.EstimatedHours
	}
	if sum != body.TotalEstimatedHours {
		t.Errorf("total %d != sum %d", body.TotalEstimatedHours, sum)
	}
}

func TestBreakdownRejectsEmptyGoal(t *testing.T) {
	srv, cleanup := newTestServer(t, Config{Planner: failingPlanner(), BasePath: "/v1"})
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/breakdown", map[string]any{
		"goal": "   ",
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v: %s", err, string(data))
	}
	if envelope.Error.Code != "bad_request" {
		t.Errorf("code = %q, want bad_request", envelope.Error.Code)
	}
}

func TestHealthIsOpen(t *testing.T) {
	srv, cleanup := newTestServer(t, Config{
		Planner: failingPlanner(),
		Auth:    AuthConfig{JWTSecret: "secret"},
	})
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var body map[string]string
	_ = json.Unmarshal(data, &body)
	if body["status"] != "healthy" {
		t.Errorf("body = %s", string(data))
	}
}

func TestModelsEndpoint(t *testing.T) {
	lister := fakeLister{models: []gemini.ModelInfo{
		{Name: "models/gemini-2.0-flash", SupportedGenerationMethods: []string{"generateContent"}},
	}}
	srv, cleanup := newTestServer(t, Config{Planner: failingPlanner(), Models: lister})
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/models", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var body ModelListResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Models) != 1 || body.Models[0].Name != "models/gemini-2.0-flash" {
		t.Errorf("models = %+v", body.Models)
	}
}

func TestModelsEndpointUpstreamFailure(t *testing.T) {
	lister := fakeLister{err: errors.New("status 403: forbidden")}
	srv, cleanup := newTestServer(t, Config{Planner: failingPlanner(), Models: lister})
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/models", nil, nil)
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
}

func TestBearerAuth(t *testing.T) {
	secret := "test-secret"
	srv, cleanup := newTestServer(t, Config{
		Planner: failingPlanner(),
		Auth:    AuthConfig{JWTSecret: secret, Logger: log.New(io.Discard, "", 0)},
	})
	defer cleanup()

	body := map[string]any{"goal": "Learn Go"}

	res, _ := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/breakdown", body, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", res.StatusCode)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/breakdown", body, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d, want 401", res.StatusCode)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "tester",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/breakdown", body, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("valid token: status %d: %s", res.StatusCode, string(data))
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, cleanup := newTestServer(t, Config{Planner: failingPlanner()})
	defer cleanup()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/v1/breakdown", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer res.Body.Close()
	if res.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q", res.Header.Get("Access-Control-Allow-Origin"))
	}
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", res.StatusCode)
	}
}
