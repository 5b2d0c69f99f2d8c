package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/events"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/testutil"
	"github.com/SAP-F-2025/election-service/internal/utils"
	"github.com/SAP-F-2025/election-service/internal/validator"
)

const (
	voterToken = "voter-token"
	adminToken = "admin-token"
)

type fakeTokenParser map[string]*casdoorsdk.Claims

func (f fakeTokenParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	claims, ok := f[token]
	if !ok {
		return nil, errors.New("token signature is invalid")
	}
	return claims, nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	slogger := testutil.DiscardLogger()
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})

	manager := services.NewDefaultServiceManager(db, repo, slogger, validator.New(), events.NewMockEventPublisher(slogger))
	if err := manager.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	parser := fakeTokenParser{
		voterToken: {User: casdoorsdk.User{Name: "voter1", DisplayName: "Vera Voter", Email: "vera@example.edu"}},
		adminToken: {User: casdoorsdk.User{Name: "officer", Email: "officer@example.edu", IsAdmin: true}},
	}

	logger := utils.NewSlogLogger(slogger)
	router := gin.New()
	SetupMiddleware(router, logger, nil)
	NewHandlerManager(manager, logger, parser).SetupRoutes(router)

	return &testServer{router: router, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		header     string
		path       string
		wantStatus int
	}{
		{"missing header", "", "/api/v1/elections", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", "/api/v1/elections", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", "/api/v1/elections", http.StatusUnauthorized},
		{"voter on voter route", "Bearer " + voterToken, "/api/v1/elections", http.StatusOK},
		{"voter on admin route", "Bearer " + voterToken, "/api/v1/admin/dashboard", http.StatusForbidden},
		{"admin on admin route", "Bearer " + adminToken, "/api/v1/admin/dashboard", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_ProvisionsUser(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/me", voterToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Username != "voter1" || user.FirstName != "Vera" || user.LastName != "Voter" || user.IsStaff {
		t.Errorf("provisioned user = %+v", user)
	}

	// second request reuses the same row
	srv.do(t, http.MethodGet, "/api/v1/me", voterToken, nil)
	if got := testutil.CountRows(t, srv.db, &models.User{}, "username = ?", "voter1"); got != 1 {
		t.Errorf("users named voter1 = %d, want 1", got)
	}
}

func TestAuthMiddleware_DisabledAccount(t *testing.T) {
	srv := newTestServer(t)

	user := testutil.CreateUser(t, srv.db, "voter1", false)
	if err := srv.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable user: %v", err)
	}

	w := srv.do(t, http.MethodGet, "/api/v1/me", voterToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d (body %s)", w.Code, http.StatusForbidden, w.Body.String())
	}
}

func TestCastVote_HTTP(t *testing.T) {
	srv := newTestServer(t)

	election := testutil.CreateElection(t, srv.db, "Senate 2024", models.ElectionActive)
	position := testutil.CreatePosition(t, srv.db, election.ID, "President")
	alice := testutil.CreateCandidate(t, srv.db, position.ID, "Alice", "S-100")

	other := testutil.CreatePosition(t, srv.db, election.ID, "Treasurer")
	carol := testutil.CreateCandidate(t, srv.db, other.ID, "Carol", "S-200")

	ended := testutil.CreateElection(t, srv.db, "Senate 2023", models.ElectionEnded)
	oldPosition := testutil.CreatePosition(t, srv.db, ended.ID, "President")
	oldCandidate := testutil.CreateCandidate(t, srv.db, oldPosition.ID, "Dan", "S-300")

	votePath := func(positionID uint) string {
		return fmt.Sprintf("/api/v1/positions/%d/vote", positionID)
	}

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"first vote", votePath(position.ID), gin.H{"candidate_id": alice.ID}, http.StatusCreated},
		{"second vote for same position", votePath(position.ID), gin.H{"candidate_id": alice.ID}, http.StatusConflict},
		{"candidate from another position", votePath(other.ID), gin.H{"candidate_id": alice.ID}, http.StatusBadRequest},
		{"missing candidate", votePath(other.ID), gin.H{}, http.StatusBadRequest},
		{"ended election", votePath(oldPosition.ID), gin.H{"candidate_id": oldCandidate.ID}, http.StatusConflict},
		{"unknown position", votePath(9999), gin.H{"candidate_id": carol.ID}, http.StatusNotFound},
		{"non numeric position", "/api/v1/positions/abc/vote", gin.H{"candidate_id": carol.ID}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, tt.path, voterToken, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	if got := testutil.CountRows(t, srv.db, &models.Vote{}, "position_id = ?", position.ID); got != 1 {
		t.Errorf("votes for President = %d, want 1", got)
	}

	w := srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/me/votes?election_id=%d", election.ID), voterToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /me/votes status = %d", w.Code)
	}
	var mine struct {
		Votes []models.Vote `json:"votes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode votes: %v", err)
	}
	if len(mine.Votes) != 1 || mine.Votes[0].CandidateID != alice.ID {
		t.Errorf("my votes = %+v, want one vote for Alice", mine.Votes)
	}
}

func TestGetBallot_HTTP(t *testing.T) {
	srv := newTestServer(t)

	election := testutil.CreateElection(t, srv.db, "Council", models.ElectionActive)
	position := testutil.CreatePosition(t, srv.db, election.ID, "Chair")
	candidate := testutil.CreateCandidate(t, srv.db, position.ID, "Eve", "S-500")

	if w := srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/positions/%d/vote", position.ID), voterToken, gin.H{"candidate_id": candidate.ID}); w.Code != http.StatusCreated {
		t.Fatalf("vote status = %d", w.Code)
	}

	w := srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/elections/%d", election.ID), voterToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var ballot services.BallotResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ballot); err != nil {
		t.Fatalf("decode ballot: %v", err)
	}
	if len(ballot.Positions) != 1 || !ballot.Positions[0].HasVoted {
		t.Errorf("ballot positions = %+v, want one voted position", ballot.Positions)
	}

	if w := srv.do(t, http.MethodGet, "/api/v1/elections/424242", voterToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown election status = %d, want 404", w.Code)
	}
}

func TestAdminElectionLifecycle_HTTP(t *testing.T) {
	srv := newTestServer(t)

	body := gin.H{
		"title":       "Student Union",
		"description": "Annual vote",
		"start_date":  "2026-01-01T09:00:00Z",
		"end_date":    "2026-01-02T17:00:00Z",
	}

	w := srv.do(t, http.MethodPost, "/api/v1/admin/elections", adminToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created models.Election
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode election: %v", err)
	}
	if created.Status != models.ElectionUpcoming {
		t.Errorf("status = %q, want %q", created.Status, models.ElectionUpcoming)
	}

	if w := srv.do(t, http.MethodPost, "/api/v1/admin/elections", adminToken, body); w.Code != http.StatusConflict {
		t.Errorf("duplicate title status = %d, want 409", w.Code)
	}

	bad := gin.H{"title": "Backwards", "start_date": "2026-02-02T00:00:00Z", "end_date": "2026-02-01T00:00:00Z"}
	if w := srv.do(t, http.MethodPost, "/api/v1/admin/elections", adminToken, bad); w.Code != http.StatusBadRequest {
		t.Errorf("end before start status = %d, want 400", w.Code)
	}

	statusPath := fmt.Sprintf("/api/v1/admin/elections/%d/status", created.ID)
	if w := srv.do(t, http.MethodPut, statusPath, adminToken, gin.H{"status": "ended"}); w.Code != http.StatusOK {
		t.Fatalf("status update = %d, body %s", w.Code, w.Body.String())
	}

	snapshotPath := fmt.Sprintf("/api/v1/admin/elections/%d/results/snapshot", created.ID)
	if w := srv.do(t, http.MethodGet, snapshotPath, adminToken, nil); w.Code != http.StatusOK {
		t.Errorf("snapshot status = %d, want 200", w.Code)
	}

	deletePath := fmt.Sprintf("/api/v1/admin/elections/%d", created.ID)
	if w := srv.do(t, http.MethodDelete, deletePath, adminToken, nil); w.Code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", w.Code)
	}
	if w := srv.do(t, http.MethodGet, deletePath, adminToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestResultsExport_HTTP(t *testing.T) {
	srv := newTestServer(t)

	election := testutil.CreateElection(t, srv.db, "Senate 2024", models.ElectionActive)
	position := testutil.CreatePosition(t, srv.db, election.ID, "President")
	alice := testutil.CreateCandidate(t, srv.db, position.ID, "Alice", "S-100")
	bob := testutil.CreateCandidate(t, srv.db, position.ID, "Bob", "S-101")
	testutil.CastVotes(t, srv.db, alice, 3)
	testutil.CastVotes(t, srv.db, bob, 1)

	w := srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/elections/%d/results/export", election.ID), adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	wantDisposition := fmt.Sprintf(`attachment; filename="election_results_%d.csv"`, election.ID)
	if got := w.Header().Get("Content-Disposition"); got != wantDisposition {
		t.Errorf("Content-Disposition = %q, want %q", got, wantDisposition)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(services.ResultsHeader, ",") {
		t.Errorf("header = %v", records[0])
	}

	xlsx := srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/elections/%d/results/export.xlsx", election.ID), adminToken, nil)
	if xlsx.Code != http.StatusOK || xlsx.Header().Get("Content-Type") != mimeXLSX {
		t.Errorf("xlsx status = %d, Content-Type = %q", xlsx.Code, xlsx.Header().Get("Content-Type"))
	}

	if w := srv.do(t, http.MethodGet, "/api/v1/admin/elections/9999/results/export", adminToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown election export status = %d, want 404", w.Code)
	}
}

func TestImport_HTTP(t *testing.T) {
	srv := newTestServer(t)

	upload := func(t *testing.T, field, content string) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if content != "" {
			part, err := mw.CreateFormFile(field, "elections.csv")
			if err != nil {
				t.Fatalf("create form file: %v", err)
			}
			part.Write([]byte(content))
		}
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/elections/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		return w
	}

	if w := upload(t, "file", "title\n"); w.Code != http.StatusBadRequest {
		t.Errorf("wrong field status = %d, want 400", w.Code)
	}

	csvData := "title,description,start_date,end_date,status\n" +
		"Spring Vote,,2026-03-01,2026-03-02,upcoming\n" +
		"Broken,,not-a-date,2026-03-02,upcoming\n"
	w := upload(t, csvFileField, csvData)
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", w.Code, w.Body.String())
	}

	var report models.ImportReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Created != 1 || report.Skipped != 1 || len(report.Errors) != 1 || report.Errors[0].Line != 3 {
		t.Errorf("report = %+v", report)
	}

	export := srv.do(t, http.MethodGet, "/api/v1/admin/elections/export", adminToken, nil)
	if export.Code != http.StatusOK {
		t.Fatalf("export status = %d", export.Code)
	}
	if got := export.Header().Get("Content-Disposition"); got != `attachment; filename="elections.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.Contains(export.Body.String(), "Spring Vote") {
		t.Errorf("export body missing imported election: %s", export.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}
