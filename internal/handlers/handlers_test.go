package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/questionportal/faq-service/internal/events"
	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories/repotest"
	"github.com/questionportal/faq-service/internal/services"
	"github.com/questionportal/faq-service/internal/utils"
	"github.com/questionportal/faq-service/internal/validator"
	"github.com/questionportal/faq-service/pkg/auth"
)

const (
	testSecret   = "handler-test-secret"
	testPassword = "secret123"
	adminEmail   = "admin@example.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGenerator struct {
	answer string
	err    error
}

func (g *fakeGenerator) Generate(ctx context.Context, questionText string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

type testServer struct {
	router    *gin.Engine
	repo      *repotest.MemoryRepository
	generator *fakeGenerator
	publisher *events.MockEventPublisher
}

type apiResponse struct {
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	AccessToken string          `json:"accessToken"`
	User        json.RawMessage `json:"user"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)
	v := validator.New()

	repo := repotest.NewMemoryRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick time.Duration
	repo.Now = func() time.Time {
		tick += time.Second
		return base.Add(tick)
	}

	ts := &testServer{
		repo:      repo,
		generator: &fakeGenerator{answer: "AI draft"},
		publisher: events.NewMockEventPublisher(slogger),
	}

	sm := services.NewServiceManager(services.ServiceDependencies{
		Repo:      repo,
		Tokens:    auth.NewTokenManager(testSecret, time.Hour),
		Generator: ts.generator,
		Publisher: ts.publisher,
		Logger:    slogger,
		Validator: v,
	})
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if _, err := sm.Auth().EnsureAdmin(context.Background(), adminEmail, testPassword, "Admin User"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}

	router := gin.New()
	SetupMiddleware(router, logger, []string{"*"})
	NewHandlerManager(sm, v, logger).SetupRoutes(router)
	ts.router = router
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s response: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, resp
}

func (ts *testServer) signup(t *testing.T, name, email string, role models.UserRole) {
	t.Helper()
	w, resp := ts.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": email, "password": testPassword, "name": name, "role": role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d, message %q", email, w.Code, resp.Message)
	}
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w, resp := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": testPassword})
	if w.Code != http.StatusOK || resp.AccessToken == "" {
		t.Fatalf("login %s: status %d, message %q", email, w.Code, resp.Message)
	}
	return resp.AccessToken
}

func (ts *testServer) createQuestion(t *testing.T, token, text string) models.Question {
	t.Helper()
	w, resp := ts.do(t, http.MethodPost, "/api/questions", token, gin.H{"questionText": text})
	if w.Code != http.StatusCreated {
		t.Fatalf("create question: status %d, message %q", w.Code, resp.Message)
	}
	var q models.Question
	if err := json.Unmarshal(resp.Data, &q); err != nil {
		t.Fatalf("decode question: %v", err)
	}
	return q
}

func decodeList(t *testing.T, resp apiResponse) services.QuestionListResponse {
	t.Helper()
	var list services.QuestionListResponse
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return list
}

func TestContributorCreatesAndListsOwnQuestions(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)
	ts.signup(t, "Dan", "dan@example.com", models.RoleContributor)
	cara := ts.login(t, "cara@example.com")
	dan := ts.login(t, "dan@example.com")

	w, resp := ts.do(t, http.MethodPost, "/api/questions", cara, gin.H{
		"questionText":      "How do I reset my password?",
		"status":            "approved",
		"aiSuggestedAnswer": "client supplied",
	})
	if w.Code != http.StatusCreated || resp.Message != "Question added successfully" {
		t.Fatalf("create: status %d, message %q", w.Code, resp.Message)
	}
	var created map[string]any
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created["status"] != "pending" || created["aiSuggestedAnswer"] != "AI draft" || created["finalAnswer"] != nil {
		t.Errorf("created question = %v", created)
	}
	if author, ok := created["createdBy"].(map[string]any); !ok || author["name"] != "Cara" {
		t.Errorf("createdBy = %v", created["createdBy"])
	}

	ts.createQuestion(t, dan, "Dan's question")

	w, resp = ts.do(t, http.MethodGet, "/api/questions", cara, nil)
	if w.Code != http.StatusOK || resp.Message != "Questions fetched successfully" {
		t.Fatalf("list: status %d, message %q", w.Code, resp.Message)
	}
	list := decodeList(t, resp)
	if list.Counts != 1 || len(list.Questions) != 1 || list.Questions[0].QuestionText != "How do I reset my password?" {
		t.Errorf("contributor list = %+v", list)
	}

	if got := ts.publisher.GetPublishedEvents(); len(got) != 2 || got[0].Type != events.QuestionCreated {
		t.Errorf("published events = %+v", got)
	}
}

func TestAdminApproveUpdatesDashboard(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)
	cara := ts.login(t, "cara@example.com")
	admin := ts.login(t, adminEmail)

	q1 := ts.createQuestion(t, cara, "First")
	q2 := ts.createQuestion(t, cara, "Second")

	w, resp := ts.do(t, http.MethodPatch, "/api/questions/approve/"+q1.ID, admin, gin.H{
		"status":      "approved",
		"finalAnswer": "Final answer",
	})
	if w.Code != http.StatusOK || resp.Message != "Question approved successfully" {
		t.Fatalf("approve: status %d, message %q", w.Code, resp.Message)
	}
	var reviewed models.Question
	if err := json.Unmarshal(resp.Data, &reviewed); err != nil {
		t.Fatal(err)
	}
	if reviewed.Status != models.QuestionApproved || reviewed.FinalAnswer == nil || *reviewed.FinalAnswer != "Final answer" {
		t.Errorf("reviewed = %+v", reviewed)
	}

	w, resp = ts.do(t, http.MethodPatch, "/api/questions/approve/"+q2.ID, admin, gin.H{"status": "rejected"})
	if w.Code != http.StatusOK || resp.Message != "Question rejected successfully" {
		t.Fatalf("reject: status %d, message %q", w.Code, resp.Message)
	}

	w, resp = ts.do(t, http.MethodGet, "/api/questions/dashboard", admin, nil)
	if w.Code != http.StatusOK || resp.Message != "Dashboard Data Fetch Successfully" {
		t.Fatalf("dashboard: status %d, message %q", w.Code, resp.Message)
	}
	var stats services.DashboardResponse
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		t.Fatal(err)
	}
	want := services.DashboardResponse{TotalQuestions: 2, ApprovedCount: 1, RejectedCount: 1, RejectionRate: 0.5}
	if stats != want {
		t.Errorf("dashboard = %+v, want %+v", stats, want)
	}

	// Status filter on the admin list
	w, resp = ts.do(t, http.MethodGet, "/api/questions?status=approved", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("filtered list: status %d", w.Code)
	}
	if list := decodeList(t, resp); list.Counts != 1 || list.Questions[0].ID != q1.ID {
		t.Errorf("approved list = %+v", list)
	}
}

func TestDashboardEmptyStore(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, adminEmail)

	w, resp := ts.do(t, http.MethodGet, "/api/questions/dashboard", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d", w.Code)
	}
	var stats services.DashboardResponse
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats != (services.DashboardResponse{}) {
		t.Errorf("dashboard = %+v, want zeros", stats)
	}
}

func TestRoleEnforcement(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Vic", "vic@example.com", models.RoleViewer)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)
	viewer := ts.login(t, "vic@example.com")
	contributor := ts.login(t, "cara@example.com")
	admin := ts.login(t, adminEmail)

	q := ts.createQuestion(t, contributor, "Visible to viewers")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{name: "viewer cannot submit", method: http.MethodPost, path: "/api/questions", token: viewer, body: gin.H{"questionText": "Q?"}, want: http.StatusForbidden},
		{name: "viewer can list", method: http.MethodGet, path: "/api/questions", token: viewer, want: http.StatusOK},
		{name: "viewer cannot review", method: http.MethodPatch, path: "/api/questions/approve/" + q.ID, token: viewer, body: gin.H{"status": "approved"}, want: http.StatusForbidden},
		{name: "contributor cannot review", method: http.MethodPatch, path: "/api/questions/approve/" + q.ID, token: contributor, body: gin.H{"status": "approved"}, want: http.StatusForbidden},
		{name: "contributor cannot see dashboard", method: http.MethodGet, path: "/api/questions/dashboard", token: contributor, want: http.StatusForbidden},
		{name: "viewer cannot export", method: http.MethodGet, path: "/api/questions/export", token: viewer, want: http.StatusForbidden},
		{name: "admin can submit", method: http.MethodPost, path: "/api/questions", token: admin, body: gin.H{"questionText": "Admin Q?"}, want: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := ts.do(t, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%q)", w.Code, tt.want, resp.Message)
			}
			if tt.want == http.StatusForbidden && resp.Message != msgForbidden {
				t.Errorf("message = %q", resp.Message)
			}
		})
	}

	// Viewer sees every question
	_, resp := ts.do(t, http.MethodGet, "/api/questions", viewer, nil)
	if list := decodeList(t, resp); list.Counts != 2 {
		t.Errorf("viewer counts = %d, want 2", list.Counts)
	}
}

func TestAuthenticationFailures(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)
	token := ts.login(t, "cara@example.com")

	user, err := ts.repo.User().GetByEmail(context.Background(), "cara@example.com")
	if err != nil {
		t.Fatal(err)
	}
	otherSigned, _ := auth.NewTokenManager(testSecret, time.Hour).CreateAccessToken(user.ID, user.Email, string(user.Role))

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{name: "missing header", header: "", wantMsg: msgTokenMissing},
		{name: "wrong scheme", header: "Basic " + token, wantMsg: msgTokenMissing},
		{name: "bearer without token", header: "Bearer ", wantMsg: msgTokenMissing},
		{name: "tampered", header: "Bearer " + tamper(token), wantMsg: msgTokenInvalid},
		{name: "valid signature but not the stored token", header: "Bearer " + otherSigned, wantMsg: msgTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			ts.router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			var resp ErrorResponse
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}
}

// tamper flips one character in the middle of the token's payload segment
func tamper(token string) string {
	b := []byte(token)
	mid := len(b) / 2
	if b[mid] == 'A' {
		b[mid] = 'B'
	} else {
		b[mid] = 'A'
	}
	return string(b)
}

func TestExpiredTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)

	user, err := ts.repo.User().GetByEmail(context.Background(), "cara@example.com")
	if err != nil {
		t.Fatal(err)
	}
	expired, err := auth.NewTokenManager(testSecret, -time.Minute).CreateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		t.Fatal(err)
	}
	if err := ts.repo.User().UpdateAccessToken(context.Background(), user.ID, expired); err != nil {
		t.Fatal(err)
	}

	w, _ := ts.do(t, http.MethodGet, "/api/questions", expired, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expired token status = %d, want 401", w.Code)
	}

	// Logging in again replaces the expired token
	fresh := ts.login(t, "cara@example.com")
	if fresh == expired {
		t.Fatal("login returned the expired token")
	}
	if w, _ := ts.do(t, http.MethodGet, "/api/questions", fresh, nil); w.Code != http.StatusOK {
		t.Errorf("fresh token status = %d, want 200", w.Code)
	}
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)

	tests := []struct {
		name    string
		path    string
		body    any
		want    int
		wantMsg string
	}{
		{
			name:    "duplicate email",
			path:    "/api/auth/signup",
			body:    gin.H{"email": "cara@example.com", "password": testPassword, "name": "Other", "role": "viewer"},
			want:    http.StatusBadRequest,
			wantMsg: msgEmailTaken,
		},
		{
			name: "admin self signup",
			path: "/api/auth/signup",
			body: gin.H{"email": "boss@example.com", "password": testPassword, "name": "Boss", "role": "admin"},
			want: http.StatusBadRequest,
		},
		{
			name: "short password",
			path: "/api/auth/signup",
			body: gin.H{"email": "new@example.com", "password": "123", "name": "New", "role": "viewer"},
			want: http.StatusBadRequest,
		},
		{
			name:    "password over 72 bytes",
			path:    "/api/auth/signup",
			body:    gin.H{"email": "long@example.com", "password": strings.Repeat("a", 80), "name": "Lou", "role": "viewer"},
			want:    http.StatusBadRequest,
			wantMsg: "password must not exceed 72 bytes",
		},
		{
			name:    "blank name",
			path:    "/api/auth/signup",
			body:    gin.H{"email": "blank@example.com", "password": testPassword, "name": "   ", "role": "viewer"},
			want:    http.StatusBadRequest,
			wantMsg: "name is required",
		},
		{
			name:    "unknown user",
			path:    "/api/auth/login",
			body:    gin.H{"email": "ghost@example.com", "password": testPassword},
			want:    http.StatusNotFound,
			wantMsg: msgUserNotRegistered,
		},
		{
			name:    "wrong password",
			path:    "/api/auth/login",
			body:    gin.H{"email": "cara@example.com", "password": "wrong-password"},
			want:    http.StatusUnauthorized,
			wantMsg: msgBadCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := ts.do(t, http.MethodPost, tt.path, "", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%q)", w.Code, tt.want, resp.Message)
			}
			if tt.wantMsg != "" && resp.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}

	first := ts.login(t, "cara@example.com")
	second := ts.login(t, "cara@example.com")
	if first != second {
		t.Error("consecutive logins should return the same token")
	}
}

func TestMalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTokenUserDetails(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)
	token := ts.login(t, "cara@example.com")

	w, resp := ts.do(t, http.MethodGet, "/api/auth/tokenUserDetails", token, nil)
	if w.Code != http.StatusOK || resp.Message != "User retrieved successfully" {
		t.Fatalf("status %d, message %q", w.Code, resp.Message)
	}

	var user map[string]any
	if err := json.Unmarshal(resp.Data, &user); err != nil {
		t.Fatal(err)
	}
	if user["email"] != "cara@example.com" || user["role"] != "contributor" {
		t.Errorf("user = %v", user)
	}
	if _, ok := user["password"]; ok {
		t.Error("password must not be serialized")
	}
	if _, ok := user["accessToken"]; ok {
		t.Error("access token must not be serialized")
	}
}

func TestQuestionErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)
	contributor := ts.login(t, "cara@example.com")
	admin := ts.login(t, adminEmail)

	w, resp := ts.do(t, http.MethodPost, "/api/questions", contributor, gin.H{"questionText": "   "})
	if w.Code != http.StatusBadRequest || resp.Message != "questionText is not allowed to be empty" {
		t.Errorf("blank question: status %d, message %q", w.Code, resp.Message)
	}

	w, _ = ts.do(t, http.MethodGet, "/api/questions?status=archived", contributor, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad status filter: status %d, want 400", w.Code)
	}

	w, resp = ts.do(t, http.MethodPatch, "/api/questions/approve/missing-id", admin, gin.H{"status": "approved"})
	if w.Code != http.StatusNotFound || resp.Message != msgQuestionNotFound {
		t.Errorf("missing question: status %d, message %q", w.Code, resp.Message)
	}

	q := ts.createQuestion(t, contributor, "Q?")
	w, _ = ts.do(t, http.MethodPatch, "/api/questions/approve/"+q.ID, admin, gin.H{"status": "archived"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad review status: status %d, want 400", w.Code)
	}
}

func TestAnswerGeneratorFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)
	token := ts.login(t, "cara@example.com")
	ts.generator.err = &services.UpstreamError{Provider: "gemini", Err: errors.New("quota exceeded")}

	w, _ := ts.do(t, http.MethodPost, "/api/questions", token, gin.H{"questionText": "Q?"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	ts.generator.err = nil
	_, resp := ts.do(t, http.MethodGet, "/api/questions", token, nil)
	if list := decodeList(t, resp); list.Counts != 0 {
		t.Errorf("question persisted after generator failure: %+v", list)
	}
}

func TestExportQuestions(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Cara", "cara@example.com", models.RoleContributor)
	ts.createQuestion(t, ts.login(t, "cara@example.com"), "Exported?")
	admin := ts.login(t, adminEmail)

	w, _ := ts.do(t, http.MethodGet, "/api/questions/export?status=pending", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	// XLSX files are zip archives
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("body is not an xlsx archive")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}
