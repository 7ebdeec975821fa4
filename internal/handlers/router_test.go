package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"profileapp/internal/config"
	"profileapp/internal/models"
	"profileapp/internal/observability"
	"profileapp/internal/services"
	contextutils "profileapp/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVisitorService struct {
	visitorID int
	err       error
	lastAgent string
	lastIP    string
}

func (s *stubVisitorService) RecordVisit(_ context.Context, _, userAgent, ipAddress string) (int, error) {
	s.lastAgent = userAgent
	s.lastIP = ipAddress
	return s.visitorID, s.err
}

func (s *stubVisitorService) GetVisitorByFingerprint(_ context.Context, _ string) (*models.Visitor, error) {
	return nil, s.err
}

func (s *stubVisitorService) GetAllVisitors(_ context.Context) ([]models.Visitor, error) {
	return nil, s.err
}

type stubResponseService struct {
	responseID int
	err        error
}

func (s *stubResponseService) RecordResponse(_ context.Context, _, _, _ string) (int, error) {
	return s.responseID, s.err
}

func (s *stubResponseService) MostRecent(_ context.Context, _ string) (*models.Response, error) {
	return nil, s.err
}

func (s *stubResponseService) AllForVisitor(_ context.Context, _ string) ([]models.Response, error) {
	return nil, s.err
}

type stubQuestionService struct {
	question        *models.Question
	lastFingerprint string
	lastContent     string
}

func (s *stubQuestionService) NextQuestion(_ context.Context, fingerprint, content string) *models.Question {
	s.lastFingerprint = fingerprint
	s.lastContent = content
	return s.question
}

type routerFixture struct {
	router    *gin.Engine
	visitors  *stubVisitorService
	responses *stubResponseService
	questions *stubQuestionService
}

func newRouterFixture() *routerFixture {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}},
	}
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})

	f := &routerFixture{
		visitors:  &stubVisitorService{visitorID: 1},
		responses: &stubResponseService{responseID: 1},
		questions: &stubQuestionService{question: &models.Question{
			Text:    "2 + 2 = ?",
			Options: []string{"4", "11", "4", "other"},
		}},
	}
	f.router = NewRouter(cfg, f.visitors, f.responses, f.questions, logger)
	return f
}

var (
	_ services.VisitorServiceInterface  = (*stubVisitorService)(nil)
	_ services.ResponseServiceInterface = (*stubResponseService)(nil)
	_ services.QuestionServiceInterface = (*stubQuestionService)(nil)
)

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	f := newRouterFixture()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestVersionEndpoint(t *testing.T) {
	f := newRouterFixture()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("GET", "/v1/version", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "profiler", body["service"])
	assert.NotEmpty(t, body["version"])
}

func TestRecordVisit_Created(t *testing.T) {
	f := newRouterFixture()
	f.visitors.visitorID = 42

	w := postJSON(f.router, "/v1/visits", `{"fingerprint": "fp-1", "user_agent": "agent", "ip_address": "203.0.113.5"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"visitor_id": 42}`, w.Body.String())
	assert.Equal(t, "agent", f.visitors.lastAgent)
	assert.Equal(t, "203.0.113.5", f.visitors.lastIP)
}

func TestRecordVisit_FallsBackToConnectionMetadata(t *testing.T) {
	f := newRouterFixture()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/visits", strings.NewReader(`{"fingerprint": "fp-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "IntegrationBot/2.0")
	req.RemoteAddr = "198.51.100.7:1234"
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "IntegrationBot/2.0", f.visitors.lastAgent)
	assert.Equal(t, "198.51.100.7", f.visitors.lastIP)
}

func TestRecordVisit_MissingFingerprint(t *testing.T) {
	f := newRouterFixture()

	w := postJSON(f.router, "/v1/visits", `{"user_agent": "agent"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(contextutils.ErrorCodeInvalidInput))
}

func TestRecordVisit_RejectsWhitespaceFingerprint(t *testing.T) {
	f := newRouterFixture()

	w := postJSON(f.router, "/v1/visits", `{"fingerprint": "has space"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(contextutils.ErrorCodeInvalidInput))
}

func TestRecordVisit_ServiceError(t *testing.T) {
	f := newRouterFixture()
	f.visitors.err = contextutils.ErrDatabaseQuery

	w := postJSON(f.router, "/v1/visits", `{"fingerprint": "fp-1"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(contextutils.ErrorCodeDatabaseQuery))
}

func TestRecordResponse_Created(t *testing.T) {
	f := newRouterFixture()
	f.responses.responseID = 9

	w := postJSON(f.router, "/v1/responses", `{"fingerprint": "fp-1", "question": "Coffee or tea?", "answer": "Tea"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"response_id": 9}`, w.Body.String())
}

func TestRecordResponse_UnknownVisitor(t *testing.T) {
	f := newRouterFixture()
	f.responses.err = contextutils.ErrRecordNotFound

	w := postJSON(f.router, "/v1/responses", `{"fingerprint": "fp-ghost", "question": "q", "answer": "a"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), string(contextutils.ErrorCodeRecordNotFound))
}

func TestRecordResponse_MissingFields(t *testing.T) {
	f := newRouterFixture()

	w := postJSON(f.router, "/v1/responses", `{"fingerprint": "fp-1", "question": "q"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNextQuestion_ReturnsQuestionJSON(t *testing.T) {
	f := newRouterFixture()

	w := postJSON(f.router, "/v1/questions", `{"fingerprint": "fp-1", "content": "a woodworking blog"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"question": "2 + 2 = ?", "options": ["4", "11", "4", "other"]}`, w.Body.String())
	assert.Equal(t, "fp-1", f.questions.lastFingerprint)
	assert.Equal(t, "a woodworking blog", f.questions.lastContent)
}

func TestNextQuestion_EmptyBodyFields(t *testing.T) {
	f := newRouterFixture()

	w := postJSON(f.router, "/v1/questions", `{}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", f.questions.lastFingerprint)
}

func TestRequestIDEchoedOnResponses(t *testing.T) {
	f := newRouterFixture()

	w := postJSON(f.router, "/v1/questions", `{}`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
