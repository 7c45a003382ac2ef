// Package domain defines the business logic for the maternity service.
package domain

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/maternity/internal/observability"
)

var (
	// ErrProfileNotFound is returned when no pregnancy profile exists yet.
	ErrProfileNotFound = errors.New("pregnancy profile not found")
	// ErrUnknownSubject is returned for checklist subjects with no template.
	ErrUnknownSubject = errors.New("no checklist template for subject")
	// ErrIndexOutOfRange is returned when a checklist index from the API
	// does not address an existing item.
	ErrIndexOutOfRange = errors.New("checklist index out of range")
)

// Service orchestrates profile, checklist, content, appointment, and chat
// workflows.
type Service struct {
	profiles     ProfileRepository
	checklists   ChecklistRepository
	appointments AppointmentRepository
	resources    ResourceRepository
	reviews      ReviewRepository
	chat         ChatRepository
	content      ContentSource
	bridge       AssistantBridge
	logger       *log.Logger

	// sessions holds live checklist states so undo stacks survive across
	// requests within one process but never across restarts.
	mu       sync.Mutex
	sessions map[string]*checklistSession
}

// checklistSession pins a live state to the template it was initialized
// against. When the upstream template drifts, the session is abandoned and
// regenerated per the reset rule. mu serializes concurrent requests for the
// same key across the whole load-mutate-persist sequence; the store itself
// stays last-write-wins.
type checklistSession struct {
	mu       sync.Mutex
	state    *ChecklistState
	template []string
}

// Repositories bundles the persistence interfaces the service depends on.
type Repositories struct {
	Profiles     ProfileRepository
	Checklists   ChecklistRepository
	Appointments AppointmentRepository
	Resources    ResourceRepository
	Reviews      ReviewRepository
	Chat         ChatRepository
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLogger overrides the logger used for swallowed persistence failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs a Service.
func NewService(repos Repositories, content ContentSource, bridge AssistantBridge, opts ...Option) *Service {
	s := &Service{
		profiles:     repos.Profiles,
		checklists:   repos.Checklists,
		appointments: repos.Appointments,
		resources:    repos.Resources,
		reviews:      repos.Reviews,
		chat:         repos.Chat,
		content:      content,
		bridge:       bridge,
		logger:       log.New(log.Writer(), "[service] ", log.LstdFlags|log.Lshortfile),
		sessions:     make(map[string]*checklistSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertProfile stores or replaces the user's pregnancy profile.
func (s *Service) UpsertProfile(ctx context.Context, profile PregnancyProfile) (*PregnancyProfile, error) {
	now := time.Now().UTC()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfile fetches the user's pregnancy profile.
func (s *Service) GetProfile(ctx context.Context, tenantID, userID string) (*PregnancyProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// GestationFor derives the gestational state for the user at the given
// moment. A nil state with a nil error means onboarding is incomplete; the
// caller prompts for a due date instead of failing.
func (s *Service) GestationFor(ctx context.Context, tenantID, userID string, now time.Time) (*GestationalState, *PregnancyProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, tenantID, userID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, nil
	}
	return ComputeGestationalState(profile.DueDate, now), profile, nil
}

// Trimesters returns curated trimester content, falling back to the built-in
// set when the content source fails.
func (s *Service) Trimesters(ctx context.Context) []Trimester {
	trimesters, err := s.content.Trimesters(ctx)
	if err != nil || len(trimesters) == 0 {
		if err != nil {
			s.logger.Printf("content fetch failed, using fallback: %v", err)
		}
		return DefaultTrimesters()
	}
	return trimesters
}

// PostpartumContent resolves the guide entry for a weeks-postpartum value,
// or the rotating daily reminder once the guided weeks are exhausted.
func (s *Service) PostpartumContent(week int, now time.Time) (PostpartumGuide, string) {
	if guide, ok := GuideForWeek(week); ok {
		return guide, ""
	}
	return PostpartumGuide{}, DailyReminder(now)
}

func sessionKey(tenantID, userID, subject string) string {
	return tenantID + "|" + userID + "|" + subject
}

// Checklist loads (or initializes) the user's checklist for a subject.
func (s *Service) Checklist(ctx context.Context, tenantID, userID, subject string) (*ChecklistState, error) {
	sess, err := s.checklistSession(ctx, tenantID, userID, subject)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Snapshot(), nil
}

func (s *Service) checklistSession(ctx context.Context, tenantID, userID, subject string) (*checklistSession, error) {
	template, ok := TemplateForSubject(s.Trimesters(ctx), subject)
	if !ok {
		return nil, ErrUnknownSubject
	}

	key := sessionKey(tenantID, userID, subject)

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok && itemsEqual(sess.template, template) {
		return sess, nil
	}

	persisted, err := s.checklists.GetChecklist(ctx, tenantID, userID, subject)
	if err != nil {
		// Corrupt or unreadable blob falls back to the template default.
		s.logger.Printf("checklist read failed for %s: %v", key, err)
		persisted = nil
	}

	sess := &checklistSession{
		state:    LoadOrInitialize(template, persisted),
		template: append([]string(nil), template...),
	}
	s.sessions[key] = sess
	return sess, nil
}

// ToggleChecklistItem flips a completion flag and writes through.
func (s *Service) ToggleChecklistItem(ctx context.Context, tenantID, userID, subject string, index int) (*ChecklistState, error) {
	sess, err := s.checklistSession(ctx, tenantID, userID, subject)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if index < 0 || index >= len(sess.state.Items) {
		return nil, ErrIndexOutOfRange
	}
	sess.state.Toggle(index)
	s.persistChecklist(ctx, tenantID, userID, subject, sess.state)
	return sess.state.Snapshot(), nil
}

// AddChecklistItem appends a custom entry and writes through.
func (s *Service) AddChecklistItem(ctx context.Context, tenantID, userID, subject, text string) (*ChecklistState, error) {
	sess, err := s.checklistSession(ctx, tenantID, userID, subject)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state.AddItem(text)
	s.persistChecklist(ctx, tenantID, userID, subject, sess.state)
	return sess.state.Snapshot(), nil
}

// RemoveChecklistItem deletes an entry, keeping it undoable for the session.
func (s *Service) RemoveChecklistItem(ctx context.Context, tenantID, userID, subject string, index int) (*ChecklistState, error) {
	sess, err := s.checklistSession(ctx, tenantID, userID, subject)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if index < 0 || index >= len(sess.state.Items) {
		return nil, ErrIndexOutOfRange
	}
	sess.state.RemoveItem(index)
	s.persistChecklist(ctx, tenantID, userID, subject, sess.state)
	return sess.state.Snapshot(), nil
}

// UndoChecklistDelete reinserts the most recently deleted entry.
func (s *Service) UndoChecklistDelete(ctx context.Context, tenantID, userID, subject string) (*ChecklistState, error) {
	sess, err := s.checklistSession(ctx, tenantID, userID, subject)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.UndoDelete() {
		s.persistChecklist(ctx, tenantID, userID, subject, sess.state)
	}
	return sess.state.Snapshot(), nil
}

// RestoreChecklist resets the checklist to its template defaults.
func (s *Service) RestoreChecklist(ctx context.Context, tenantID, userID, subject string) (*ChecklistState, error) {
	sess, err := s.checklistSession(ctx, tenantID, userID, subject)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state.RestoreOriginal(sess.template)
	s.persistChecklist(ctx, tenantID, userID, subject, sess.state)
	return sess.state.Snapshot(), nil
}

// persistChecklist writes the {items, done} pair through to the keyed store.
// A failed save is logged and counted, never surfaced: the in-memory state is
// already mutated and the UI must not crash on a failed write.
func (s *Service) persistChecklist(ctx context.Context, tenantID, userID, subject string, state *ChecklistState) {
	if err := s.checklists.SaveChecklist(ctx, tenantID, userID, subject, state.Items, state.Done); err != nil {
		observability.RecordChecklistPersistFailure()
		s.logger.Printf("checklist save failed for %s: %v", sessionKey(tenantID, userID, subject), err)
	}
}

// Chat forwards the message to the assistant bridge and persists both turns.
// A bridge failure becomes a visible error turn so the transcript stays
// usable.
func (s *Service) Chat(ctx context.Context, tenantID, userID, userName, message string) (ChatMessage, error) {
	// History is read before the current turn is stored so the in-flight
	// message reaches the bridge only once, as message.
	history, err := s.chat.ChatHistory(ctx, tenantID, userID, 20)
	if err != nil {
		s.logger.Printf("chat history read failed: %v", err)
		history = nil
	}
	turns := make([]BridgeTurn, 0, len(history))
	for _, msg := range history {
		if msg.Role == ChatRoleError {
			continue
		}
		turns = append(turns, BridgeTurn{Role: string(msg.Role), Text: msg.Text})
	}

	userTurn := ChatMessage{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      ChatRoleUser,
		Text:      message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.chat.AppendChatMessage(ctx, userTurn); err != nil {
		return ChatMessage{}, err
	}

	reply := ChatMessage{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      ChatRoleAssistant,
		CreatedAt: time.Now().UTC(),
	}

	text, bridgeErr := s.bridge.Reply(ctx, userID, userName, message, turns)
	if bridgeErr != nil {
		observability.RecordAssistantFallback()
		reply.Role = ChatRoleError
		reply.Text = "The assistant is unavailable right now. Please try again."
		s.logger.Printf("assistant bridge failed: %v", bridgeErr)
	} else {
		reply.Text = text
	}

	if err := s.chat.AppendChatMessage(ctx, reply); err != nil {
		return ChatMessage{}, err
	}
	return reply, nil
}

// ChatHistory returns the persisted transcript, oldest first.
func (s *Service) ChatHistory(ctx context.Context, tenantID, userID string, limit int) ([]ChatMessage, error) {
	return s.chat.ChatHistory(ctx, tenantID, userID, limit)
}

// CreateAppointment books a visit.
func (s *Service) CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	appt.ID = uuid.NewString()
	appt.CreatedAt = time.Now().UTC()
	appt.StartsAt = appt.StartsAt.UTC()
	if err := s.appointments.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListAppointments returns appointments with cursor pagination.
func (s *Service) ListAppointments(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]Appointment, *Cursor, error) {
	return s.appointments.ListAppointmentsByUser(ctx, tenantID, userID, cursor, limit)
}

// CalendarMarkers returns the days of the month carrying appointments.
func (s *Service) CalendarMarkers(ctx context.Context, tenantID, userID string, year int, month time.Month) ([]int, error) {
	return s.appointments.DaysWithAppointments(ctx, tenantID, userID, year, month)
}

// Resources lists curated resources, optionally filtered by category.
func (s *Service) Resources(ctx context.Context, tenantID, category string) ([]Resource, error) {
	return s.resources.ListResources(ctx, tenantID, category)
}

// CreateReview stores a provider review.
func (s *Service) CreateReview(ctx context.Context, review Review) (*Review, error) {
	review.ID = uuid.NewString()
	review.CreatedAt = time.Now().UTC()
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return &review, nil
}

// ListReviews returns reviews for a provider.
func (s *Service) ListReviews(ctx context.Context, tenantID, provider string) ([]Review, error) {
	return s.reviews.ListReviewsByProvider(ctx, tenantID, provider)
}
