package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/maternity/internal/auth"
	"example.com/maternity/internal/domain"
)

type mockRepo struct {
	profile    *domain.PregnancyProfile
	checklist  *domain.ChecklistState
	messages   []domain.ChatMessage
	resources  []domain.Resource
	saved      bool
	savedItems []string
	savedDone  []bool
}

func (m *mockRepo) UpsertProfile(ctx context.Context, profile domain.PregnancyProfile) error {
	m.profile = &profile
	return nil
}

func (m *mockRepo) GetProfile(ctx context.Context, tenantID, userID string) (*domain.PregnancyProfile, error) {
	return m.profile, nil
}

func (m *mockRepo) GetChecklist(ctx context.Context, tenantID, userID, subject string) (*domain.ChecklistState, error) {
	return m.checklist, nil
}

func (m *mockRepo) SaveChecklist(ctx context.Context, tenantID, userID, subject string, items []string, done []bool) error {
	m.saved = true
	m.savedItems = append([]string(nil), items...)
	m.savedDone = append([]bool(nil), done...)
	return nil
}

func (m *mockRepo) CreateAppointment(ctx context.Context, appt domain.Appointment) error {
	return nil
}

func (m *mockRepo) ListAppointmentsByUser(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.Appointment, *domain.Cursor, error) {
	return nil, nil, nil
}

func (m *mockRepo) DaysWithAppointments(ctx context.Context, tenantID, userID string, year int, month time.Month) ([]int, error) {
	return []int{3, 14}, nil
}

func (m *mockRepo) ListResources(ctx context.Context, tenantID, category string) ([]domain.Resource, error) {
	return m.resources, nil
}

func (m *mockRepo) CreateReview(ctx context.Context, review domain.Review) error {
	return nil
}

func (m *mockRepo) ListReviewsByProvider(ctx context.Context, tenantID, provider string) ([]domain.Review, error) {
	return nil, nil
}

func (m *mockRepo) AppendChatMessage(ctx context.Context, msg domain.ChatMessage) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockRepo) ChatHistory(ctx context.Context, tenantID, userID string, limit int) ([]domain.ChatMessage, error) {
	return m.messages, nil
}

type mockContent struct{}

func (mockContent) Trimesters(ctx context.Context) ([]domain.Trimester, error) {
	return domain.DefaultTrimesters(), nil
}

type mockBridge struct {
	reply string
}

func (b mockBridge) Reply(ctx context.Context, userID, userName, message string, history []domain.BridgeTurn) (string, error) {
	return b.reply, nil
}

func newTestHandler(repo *mockRepo) (*Handler, *http.ServeMux) {
	service := domain.NewService(domain.Repositories{
		Profiles:     repo,
		Checklists:   repo,
		Appointments: repo,
		Resources:    repo,
		Reviews:      repo,
		Chat:         repo,
	}, mockContent{}, mockBridge{reply: "ok"})

	handler := NewHandler(service)
	handler.now = func() time.Time {
		return time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	}
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return handler, mux
}

func authed(req *http.Request, scopes ...string) *http.Request {
	scopeSet := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		scopeSet[s] = struct{}{}
	}
	claims := &auth.Claims{
		Subject:     "user-1",
		TenantID:    "tenant-1",
		DisplayName: "Asha",
		Scopes:      scopeSet,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestGestationMidPregnancy(t *testing.T) {
	repo := &mockRepo{profile: &domain.PregnancyProfile{
		TenantID: "tenant-1",
		UserID:   "user-1",
		DueDate:  time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}}
	_, mux := newTestHandler(repo)

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/gestation", nil), auth.ScopeCareRead)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp GestationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OnboardingRequired {
		t.Fatal("unexpected onboarding_required")
	}
	if resp.CurrentWeek != 19 {
		t.Fatalf("expected week 19 got %d", resp.CurrentWeek)
	}
	if resp.Trimester != 2 {
		t.Fatalf("expected trimester 2 got %d", resp.Trimester)
	}
	if resp.DaysRemaining != 151 {
		t.Fatalf("expected 151 days remaining got %d", resp.DaysRemaining)
	}
}

func TestGestationWithoutProfilePromptsOnboarding(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/gestation", nil), auth.ScopeCareRead)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var resp GestationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OnboardingRequired {
		t.Fatal("expected onboarding_required true")
	}
}

func TestPutProfileRejectsBadDueDate(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodPut, "/v1/profile",
		strings.NewReader(`{"due_date":"soon"}`)), auth.ScopeCareWrite)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestPutProfileThenGet(t *testing.T) {
	repo := &mockRepo{}
	_, mux := newTestHandler(repo)

	req := authed(httptest.NewRequest(http.MethodPut, "/v1/profile",
		strings.NewReader(`{"due_date":"2025-06-01"}`)), auth.ScopeCareWrite)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
	if repo.profile == nil || repo.profile.DueDate.Format("2006-01-02") != "2025-06-01" {
		t.Fatalf("profile not stored: %+v", repo.profile)
	}
	// Display name falls back to the token claim.
	if repo.profile.DisplayName != "Asha" {
		t.Fatalf("expected claim display name got %q", repo.profile.DisplayName)
	}

	req = authed(httptest.NewRequest(http.MethodGet, "/v1/profile", nil), auth.ScopeCareRead)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}

func TestChecklistFlowOverHTTP(t *testing.T) {
	repo := &mockRepo{}
	_, mux := newTestHandler(repo)

	get := func() ChecklistView {
		req := authed(httptest.NewRequest(http.MethodGet, "/v1/checklists/trimester-1", nil), auth.ScopeCareRead)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
		}
		var view ChecklistView
		if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
			t.Fatalf("failed to decode checklist: %v", err)
		}
		return view
	}

	initial := get()
	if len(initial.Items) == 0 {
		t.Fatal("expected template-seeded checklist")
	}

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/checklists/trimester-1/toggle",
		strings.NewReader(`{"index":0}`)), auth.ScopeCareWrite)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
	if !repo.saved {
		t.Fatal("toggle should write through")
	}
	if !repo.savedDone[0] {
		t.Fatal("first item should be done after toggle")
	}

	req = authed(httptest.NewRequest(http.MethodDelete, "/v1/checklists/trimester-1/items/0", nil), auth.ScopeCareWrite)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete expected 200 got %d", rr.Code)
	}

	after := get()
	if len(after.Items) != len(initial.Items)-1 {
		t.Fatalf("expected %d items got %d", len(initial.Items)-1, len(after.Items))
	}
	if after.UndoDepth != 1 {
		t.Fatalf("expected undo depth 1 got %d", after.UndoDepth)
	}

	req = authed(httptest.NewRequest(http.MethodPost, "/v1/checklists/trimester-1/undo", nil), auth.ScopeCareWrite)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("undo expected 200 got %d", rr.Code)
	}

	restored := get()
	if len(restored.Items) != len(initial.Items) {
		t.Fatalf("undo should restore item count, got %d", len(restored.Items))
	}
	if restored.UndoDepth != 0 {
		t.Fatalf("expected undo depth 0 got %d", restored.UndoDepth)
	}
}

func TestChecklistToggleOutOfRange(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/checklists/trimester-1/toggle",
		strings.NewReader(`{"index":99}`)), auth.ScopeCareWrite)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestChecklistUnknownSubjectIs404(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/checklists/nope", nil), auth.ScopeCareRead)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestRestoreRequiresConfirmation(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/checklists/trimester-1/restore",
		strings.NewReader(`{}`)), auth.ScopeCareWrite)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	req = authed(httptest.NewRequest(http.MethodPost, "/v1/checklists/trimester-1/restore",
		strings.NewReader(`{"confirm":true}`)), auth.ScopeCareWrite)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestChatRequiresWriteScope(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"message":"hi"}`)), auth.ScopeCareRead)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestChatReturnsAssistantTurn(t *testing.T) {
	repo := &mockRepo{}
	_, mux := newTestHandler(repo)

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"message":"hello"}`)), auth.ScopeCareWrite)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ChatMessageView
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Role != "assistant" || resp.Text != "ok" {
		t.Fatalf("unexpected reply %+v", resp)
	}
	if len(repo.messages) != 2 {
		t.Fatalf("expected both turns persisted got %d", len(repo.messages))
	}
}

func TestCreateAppointmentValidates(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/appointments",
		strings.NewReader(`{"location":"clinic"}`)), auth.ScopeCareWrite)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	req = authed(httptest.NewRequest(http.MethodPost, "/v1/appointments",
		strings.NewReader(`{"provider":"Dr. Lane","starts_at":"2025-02-01T10:00:00Z"}`)), auth.ScopeCareWrite)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCalendarMarkers(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/appointments/calendar?month=2025-02", nil), auth.ScopeCareRead)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	var resp CalendarResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Month != "2025-02" {
		t.Fatalf("unexpected month %s", resp.Month)
	}
	if len(resp.MarkedDays) != 2 {
		t.Fatalf("expected 2 marked days got %d", len(resp.MarkedDays))
	}
}

func TestPostpartumGuideWeekOverride(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/postpartum/guide?week=3", nil), auth.ScopeCareRead)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	var resp PostpartumGuideResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Week != 3 || resp.BabyDevelopment == "" {
		t.Fatalf("unexpected guide %+v", resp)
	}
	if resp.DailyReminder != "" {
		t.Fatal("guided weeks should not carry a daily reminder")
	}

	req = authed(httptest.NewRequest(http.MethodGet, "/v1/postpartum/guide?week=20", nil), auth.ScopeCareRead)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DailyReminder == "" {
		t.Fatal("weeks past the guide should fall back to a daily reminder")
	}
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	_, mux := newTestHandler(&mockRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/gestation", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
