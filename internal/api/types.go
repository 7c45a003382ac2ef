package api

import (
	"fmt"
	"strings"
	"time"

	"example.com/maternity/internal/domain"
)

// UpsertProfileRequest is the payload for PUT /v1/profile.
type UpsertProfileRequest struct {
	DueDate     string `json:"due_date"`
	DisplayName string `json:"display_name,omitempty"`
}

// ProfileView is the JSON rendering of a pregnancy profile.
type ProfileView struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	DueDate     string `json:"due_date"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func toProfileView(p domain.PregnancyProfile) ProfileView {
	view := ProfileView{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		DueDate:     p.DueDate.Format("2006-01-02"),
	}
	if !p.CreatedAt.IsZero() {
		view.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		view.UpdatedAt = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return view
}

// GestationResponse carries the derived pregnancy timeline facts.
type GestationResponse struct {
	OnboardingRequired  bool   `json:"onboarding_required,omitempty"`
	DueDate             string `json:"due_date,omitempty"`
	CurrentWeek         int    `json:"current_week"`
	Trimester           int    `json:"trimester"`
	IsPostpartum        bool   `json:"is_postpartum"`
	DaysRemaining       int    `json:"days_remaining"`
	WeeksPostpartum     int    `json:"weeks_postpartum"`
	DaysIntoCurrentWeek int    `json:"days_into_current_week"`
}

// TrimesterView is one trimester content card.
type TrimesterView struct {
	ID         string   `json:"id"`
	Index      int      `json:"index"`
	Title      string   `json:"title"`
	WeeksRange string   `json:"weeks_range"`
	Summary    string   `json:"summary"`
	Checklist  []string `json:"checklist"`
	DoctorTips []string `json:"doctor_tips"`
}

// TrimestersResponse lists the trimester content cards in order.
type TrimestersResponse struct {
	Items []TrimesterView `json:"items"`
}

// PostpartumGuideResponse is either a weekly guide entry or, past the
// guided window, a rotating daily reminder.
type PostpartumGuideResponse struct {
	Week            int    `json:"week"`
	BabyDevelopment string `json:"baby_development,omitempty"`
	SelfCare        string `json:"self_care,omitempty"`
	DailyReminder   string `json:"daily_reminder,omitempty"`
}

// ChecklistIndexRequest targets one checklist entry by position.
type ChecklistIndexRequest struct {
	Index int `json:"index"`
}

// AddChecklistItemRequest appends a custom checklist entry.
type AddChecklistItemRequest struct {
	Text string `json:"text"`
}

// RestoreChecklistRequest gates the destructive reset behind an explicit
// confirmation flag.
type RestoreChecklistRequest struct {
	Confirm bool `json:"confirm"`
}

// ChecklistView is the JSON rendering of checklist state.
type ChecklistView struct {
	Subject   string   `json:"subject"`
	Items     []string `json:"items"`
	Done      []bool   `json:"done"`
	UndoDepth int      `json:"undo_depth"`
}

func toChecklistView(subject string, state *domain.ChecklistState) ChecklistView {
	view := ChecklistView{
		Subject:   subject,
		Items:     state.Items,
		Done:      state.Done,
		UndoDepth: state.UndoDepth(),
	}
	if view.Items == nil {
		view.Items = []string{}
	}
	if view.Done == nil {
		view.Done = []bool{}
	}
	return view
}

// ChatRequest is the payload for POST /v1/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatMessageView is one transcript turn.
type ChatMessageView struct {
	ID        string `json:"id,omitempty"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ChatHistoryResponse lists transcript turns oldest first.
type ChatHistoryResponse struct {
	Items []ChatMessageView `json:"items"`
}

func toChatView(msg domain.ChatMessage) ChatMessageView {
	view := ChatMessageView{
		ID:   msg.ID,
		Role: string(msg.Role),
		Text: msg.Text,
	}
	if !msg.CreatedAt.IsZero() {
		view.CreatedAt = msg.CreatedAt.UTC().Format(time.RFC3339)
	}
	return view
}

// CreateAppointmentRequest is the payload for POST /v1/appointments.
type CreateAppointmentRequest struct {
	Provider string    `json:"provider"`
	Location string    `json:"location,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	StartsAt time.Time `json:"starts_at"`
}

// Validate enforces required appointment fields.
func (r CreateAppointmentRequest) Validate() error {
	if strings.TrimSpace(r.Provider) == "" {
		return fmt.Errorf("provider is required")
	}
	if r.StartsAt.IsZero() {
		return fmt.Errorf("starts_at is required")
	}
	return nil
}

// AppointmentView is the JSON rendering of an appointment.
type AppointmentView struct {
	AppointmentID string `json:"appointment_id"`
	Provider      string `json:"provider"`
	Location      string `json:"location,omitempty"`
	Notes         string `json:"notes,omitempty"`
	StartsAt      string `json:"starts_at"`
	CreatedAt     string `json:"created_at,omitempty"`
}

func toAppointmentView(a domain.Appointment) AppointmentView {
	view := AppointmentView{
		AppointmentID: a.ID,
		Provider:      a.Provider,
		Location:      a.Location,
		Notes:         a.Notes,
		StartsAt:      a.StartsAt.UTC().Format(time.RFC3339),
	}
	if !a.CreatedAt.IsZero() {
		view.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return view
}

// ListAppointmentsResponse is a cursor-paginated appointment page.
type ListAppointmentsResponse struct {
	Items      []AppointmentView `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// CalendarResponse marks the days of a month holding appointments.
type CalendarResponse struct {
	Month      string `json:"month"`
	MarkedDays []int  `json:"marked_days"`
}

// ResourceView is one curated resource entry.
type ResourceView struct {
	ResourceID string `json:"resource_id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	URL        string `json:"url"`
	Summary    string `json:"summary,omitempty"`
}

// ResourcesResponse lists curated resources.
type ResourcesResponse struct {
	Items []ResourceView `json:"items"`
}

// CreateReviewRequest is the payload for POST /v1/reviews.
type CreateReviewRequest struct {
	Provider string `json:"provider"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

// Validate enforces required review fields.
func (r CreateReviewRequest) Validate() error {
	if strings.TrimSpace(r.Provider) == "" {
		return fmt.Errorf("provider is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}

// ReviewView is the JSON rendering of a provider review.
type ReviewView struct {
	ReviewID  string `json:"review_id"`
	Provider  string `json:"provider"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toReviewView(rev domain.Review) ReviewView {
	view := ReviewView{
		ReviewID: rev.ID,
		Provider: rev.Provider,
		Rating:   rev.Rating,
		Comment:  rev.Comment,
	}
	if !rev.CreatedAt.IsZero() {
		view.CreatedAt = rev.CreatedAt.UTC().Format(time.RFC3339)
	}
	return view
}

// ReviewsResponse lists reviews for a provider.
type ReviewsResponse struct {
	Items []ReviewView `json:"items"`
}
