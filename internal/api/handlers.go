// Package api exposes HTTP handlers for the maternity service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/maternity/internal/auth"
	"example.com/maternity/internal/domain"
	"example.com/maternity/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/profile", h.profile)
	mux.HandleFunc("/v1/gestation", h.gestation)
	mux.HandleFunc("/v1/trimesters", h.trimesters)
	mux.HandleFunc("/v1/postpartum/guide", h.postpartumGuide)
	mux.HandleFunc("/v1/checklists/", h.checklists)
	mux.HandleFunc("/v1/chat", h.chat)
	mux.HandleFunc("/v1/chat/history", h.chatHistory)
	mux.HandleFunc("/v1/appointments", h.appointments)
	mux.HandleFunc("/v1/appointments/calendar", h.appointmentCalendar)
	mux.HandleFunc("/v1/resources", h.resources)
	mux.HandleFunc("/v1/reviews", h.reviews)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func readClaims(w http.ResponseWriter, r *http.Request, scope string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if scope == auth.ScopeCareRead {
		if !claims.HasScope(auth.ScopeCareRead) && !claims.HasScope(auth.ScopeCareWrite) {
			writeError(w, http.StatusForbidden, "forbidden", "scope care:read required")
			return nil, false
		}
		return claims, true
	}
	if !claims.HasScope(scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return nil, false
	}
	return claims, true
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.putProfile(w, r)
	case http.MethodGet:
		h.getProfile(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) putProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	dueDate, parsed := domain.ParseDueDate(req.DueDate)
	if !parsed {
		writeError(w, http.StatusBadRequest, "validation_failed", "due_date must be a calendar date")
		return
	}

	displayName := req.DisplayName
	if strings.TrimSpace(displayName) == "" {
		displayName = claims.DisplayName
	}

	profile, err := h.service.UpsertProfile(r.Context(), domain.PregnancyProfile{
		TenantID:    claims.TenantID,
		UserID:      claims.Subject,
		DisplayName: displayName,
		DueDate:     dueDate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(*profile))
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "pregnancy profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(*profile))
}

func (h *Handler) gestation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}

	now := h.now().UTC()
	if raw := r.URL.Query().Get("on"); raw != "" {
		parsed, okDate := domain.ParseDueDate(raw)
		if !okDate {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid on date")
			return
		}
		now = parsed
	}

	state, profile, err := h.service.GestationFor(r.Context(), claims.TenantID, claims.Subject, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if state == nil {
		// Missing or unusable due date prompts onboarding, never a crash.
		writeJSON(w, http.StatusOK, GestationResponse{OnboardingRequired: true})
		return
	}

	writeJSON(w, http.StatusOK, GestationResponse{
		DueDate:             profile.DueDate.Format("2006-01-02"),
		CurrentWeek:         state.CurrentWeek,
		Trimester:           state.Trimester,
		IsPostpartum:        state.IsPostpartum,
		DaysRemaining:       state.DaysRemaining,
		WeeksPostpartum:     state.WeeksPostpartum,
		DaysIntoCurrentWeek: state.DaysIntoCurrentWeek,
	})
}

func (h *Handler) trimesters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := readClaims(w, r, auth.ScopeCareRead); !ok {
		return
	}

	trimesters := h.service.Trimesters(r.Context())
	items := make([]TrimesterView, 0, len(trimesters))
	for _, tri := range trimesters {
		items = append(items, TrimesterView{
			ID:         tri.ID,
			Index:      tri.Index,
			Title:      tri.Title,
			WeeksRange: tri.WeeksRange,
			Summary:    tri.Summary,
			Checklist:  tri.Checklist,
			DoctorTips: tri.DoctorTips,
		})
	}
	writeJSON(w, http.StatusOK, TrimestersResponse{Items: items})
}

func (h *Handler) postpartumGuide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}

	now := h.now().UTC()
	week := 0
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid week")
			return
		}
		week = parsed
	} else {
		state, _, err := h.service.GestationFor(r.Context(), claims.TenantID, claims.Subject, now)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		if state != nil {
			week = state.WeeksPostpartum
		}
	}

	guide, reminder := h.service.PostpartumContent(week, now)
	if reminder != "" {
		writeJSON(w, http.StatusOK, PostpartumGuideResponse{Week: week, DailyReminder: reminder})
		return
	}
	writeJSON(w, http.StatusOK, PostpartumGuideResponse{
		Week:            guide.Week,
		BabyDevelopment: guide.BabyDevelopment,
		SelfCare:        guide.SelfCare,
	})
}

// checklists routes /v1/checklists/{subject}[/action[/index]].
func (h *Handler) checklists(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/checklists/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing checklist subject")
		return
	}
	parts := strings.Split(rest, "/")
	subject := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getChecklist(w, r, subject)
	case len(parts) == 2 && parts[1] == "toggle" && r.Method == http.MethodPost:
		h.toggleChecklistItem(w, r, subject)
	case len(parts) == 2 && parts[1] == "items" && r.Method == http.MethodPost:
		h.addChecklistItem(w, r, subject)
	case len(parts) == 3 && parts[1] == "items" && r.Method == http.MethodDelete:
		h.removeChecklistItem(w, r, subject, parts[2])
	case len(parts) == 2 && parts[1] == "undo" && r.Method == http.MethodPost:
		h.undoChecklistDelete(w, r, subject)
	case len(parts) == 2 && parts[1] == "restore" && r.Method == http.MethodPost:
		h.restoreChecklist(w, r, subject)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) getChecklist(w http.ResponseWriter, r *http.Request, subject string) {
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}
	state, err := h.service.Checklist(r.Context(), claims.TenantID, claims.Subject, subject)
	if err != nil {
		writeChecklistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistView(subject, state))
}

func (h *Handler) toggleChecklistItem(w http.ResponseWriter, r *http.Request, subject string) {
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}
	var req ChecklistIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	state, err := h.service.ToggleChecklistItem(r.Context(), claims.TenantID, claims.Subject, subject, req.Index)
	if err != nil {
		writeChecklistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistView(subject, state))
}

func (h *Handler) addChecklistItem(w http.ResponseWriter, r *http.Request, subject string) {
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}
	var req AddChecklistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "text is required")
		return
	}
	state, err := h.service.AddChecklistItem(r.Context(), claims.TenantID, claims.Subject, subject, req.Text)
	if err != nil {
		writeChecklistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistView(subject, state))
}

func (h *Handler) removeChecklistItem(w http.ResponseWriter, r *http.Request, subject, rawIndex string) {
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid item index")
		return
	}
	state, err := h.service.RemoveChecklistItem(r.Context(), claims.TenantID, claims.Subject, subject, index)
	if err != nil {
		writeChecklistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistView(subject, state))
}

func (h *Handler) undoChecklistDelete(w http.ResponseWriter, r *http.Request, subject string) {
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}
	state, err := h.service.UndoChecklistDelete(r.Context(), claims.TenantID, claims.Subject, subject)
	if err != nil {
		writeChecklistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistView(subject, state))
}

func (h *Handler) restoreChecklist(w http.ResponseWriter, r *http.Request, subject string) {
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}
	var req RestoreChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if !req.Confirm {
		// Restoring discards all custom items and completion state.
		writeError(w, http.StatusBadRequest, "confirmation_required", "restore discards edits; pass confirm=true")
		return
	}
	state, err := h.service.RestoreChecklist(r.Context(), claims.TenantID, claims.Subject, subject)
	if err != nil {
		writeChecklistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistView(subject, state))
}

func writeChecklistError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownSubject):
		writeError(w, http.StatusNotFound, "not_found", "no checklist for subject")
	case errors.Is(err, domain.ErrIndexOutOfRange):
		writeError(w, http.StatusBadRequest, "validation_failed", "item index out of range")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "message is required")
		return
	}

	reply, err := h.service.Chat(r.Context(), claims.TenantID, claims.Subject, claims.DisplayName, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toChatView(reply))
}

func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := h.service.ChatHistory(r.Context(), claims.TenantID, claims.Subject, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ChatMessageView, 0, len(messages))
	for _, msg := range messages {
		items = append(items, toChatView(msg))
	}
	writeJSON(w, http.StatusOK, ChatHistoryResponse{Items: items})
}

func (h *Handler) appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createAppointment(w, r)
	case http.MethodGet:
		h.listAppointments(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	appt, err := h.service.CreateAppointment(r.Context(), domain.Appointment{
		TenantID: claims.TenantID,
		UserID:   claims.Subject,
		Provider: req.Provider,
		Location: req.Location,
		Notes:    req.Notes,
		StartsAt: req.StartsAt,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentView(*appt))
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	appointments, next, err := h.service.ListAppointments(r.Context(), claims.TenantID, claims.Subject, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]AppointmentView, 0, len(appointments))
	for _, appt := range appointments {
		items = append(items, toAppointmentView(appt))
	}
	writeJSON(w, http.StatusOK, ListAppointmentsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) appointmentCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("month")
	if raw == "" {
		raw = h.now().UTC().Format("2006-01")
	}
	monthStart, err := time.Parse("2006-01", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "month must be YYYY-MM")
		return
	}

	days, err := h.service.CalendarMarkers(r.Context(), claims.TenantID, claims.Subject, monthStart.Year(), monthStart.Month())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if days == nil {
		days = []int{}
	}
	writeJSON(w, http.StatusOK, CalendarResponse{Month: raw, MarkedDays: days})
}

func (h *Handler) resources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}

	resources, err := h.service.Resources(r.Context(), claims.TenantID, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ResourceView, 0, len(resources))
	for _, res := range resources {
		items = append(items, ResourceView{
			ResourceID: res.ID,
			Title:      res.Title,
			Category:   res.Category,
			URL:        res.URL,
			Summary:    res.Summary,
		})
	}
	writeJSON(w, http.StatusOK, ResourcesResponse{Items: items})
}

func (h *Handler) reviews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createReview(w, r)
	case http.MethodGet:
		h.listReviews(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := readClaims(w, r, auth.ScopeCareWrite)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	review, err := h.service.CreateReview(r.Context(), domain.Review{
		TenantID: claims.TenantID,
		UserID:   claims.Subject,
		Provider: req.Provider,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toReviewView(*review))
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	claims, ok := readClaims(w, r, auth.ScopeCareRead)
	if !ok {
		return
	}

	provider := r.URL.Query().Get("provider")
	if strings.TrimSpace(provider) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing provider parameter")
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), claims.TenantID, provider)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ReviewView, 0, len(reviews))
	for _, rev := range reviews {
		items = append(items, toReviewView(rev))
	}
	writeJSON(w, http.StatusOK, ReviewsResponse{Items: items})
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
