package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"

	"restart50-service/internal/assessment"
	"restart50-service/internal/assistant"
	"restart50-service/internal/catalog"
	"restart50-service/internal/contact"
	"restart50-service/internal/domain"
	"restart50-service/internal/identity"
	"restart50-service/internal/logger"
	"restart50-service/internal/progress"
	"restart50-service/internal/validation"
)

// SessionRepository abstracts how sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// Deps wires the service to its collaborators.
type Deps struct {
	Sessions       SessionRepository
	Users          *identity.Resolver
	Progress       *progress.Tracker
	Contacts       *contact.Log
	Catalog        *catalog.Catalog
	Assistant      *assistant.Dispatcher
	Logger         *logger.Logger
	MaxChatHistory int
}

// Service contains the learner-facing use cases. Every call is addressed by a
// session id.
type Service struct {
	sessions   SessionRepository
	users      *identity.Resolver
	progress   *progress.Tracker
	contacts   *contact.Log
	catalog    *catalog.Catalog
	assistant  *assistant.Dispatcher
	log        *logger.Logger
	maxHistory int
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		sessions:   d.Sessions,
		users:      d.Users,
		progress:   d.Progress,
		contacts:   d.Contacts,
		catalog:    d.Catalog,
		assistant:  d.Assistant,
		log:        log,
		maxHistory: d.MaxChatHistory,
	}
}

// QuizOutcome is what a quiz submission returns.
type QuizOutcome struct {
	Result   assessment.Result     `json:"result"`
	Progress domain.CourseProgress `json:"progress"`
	Message  string                `json:"message"`
}

// ChatReply is the assistant answer for one input.
type ChatReply struct {
	Question domain.ChatEntry  `json:"question"`
	Answer   domain.ChatEntry  `json:"answer"`
	Speech   *domain.SpeechCue `json:"speech,omitempty"`
}

// Export is a downloadable copy of the user's stored record.
type Export struct {
	FileName string
	Data     []byte
}

var errAnswerCount = errors.New("wrong number of answers")

// StartSession creates an anonymous session with default preferences.
func (s *Service) StartSession(_ context.Context) *Session {
	session := NewSession(uuid.NewString(), s.maxHistory)
	s.sessions.Put(session)
	s.log.Debug("session started", "session_id", session.ID())
	return session
}

// Session looks up a live session.
func (s *Service) Session(_ context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// EndSession discards the session and its chat history.
func (s *Service) EndSession(_ context.Context, id string) {
	s.sessions.Delete(id)
}

// Login binds the user for email to the session, creating the user on first login.
func (s *Service) Login(ctx context.Context, sessionID, name, email string) (domain.User, bool, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.User{}, false, err
	}
	u, created, err := s.users.Login(ctx, name, email)
	if err != nil {
		return domain.User{}, false, err
	}
	session.bindUser(u.ID)
	return u, created, nil
}

// Logout clears the user from the session; preferences and chat stay.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	session.bindUser("")
	return nil
}

// CurrentUser returns the stored record of the logged-in user.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (domain.User, error) {
	_, u, err := s.loggedIn(ctx, sessionID)
	return u, err
}

func (s *Service) loggedIn(ctx context.Context, sessionID string) (*Session, domain.User, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, domain.User{}, err
	}
	userID := session.UserID()
	if userID == "" {
		return session, domain.User{}, domain.ErrNotLoggedIn
	}
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		// The store lost the record (e.g. a corrupt file was reset).
		session.bindUser("")
		return session, domain.User{}, domain.ErrNotLoggedIn
	}
	if err != nil {
		return session, domain.User{}, err
	}
	return session, u, nil
}

// Courses lists the catalog.
func (s *Service) Courses() []domain.Course {
	return s.catalog.All()
}

// Course finds one catalog course.
func (s *Service) Course(id string) (domain.Course, error) {
	c, ok := s.catalog.Get(id)
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return c, nil
}

// ContactLabels lists the subjects a contact message can be about.
func (s *Service) ContactLabels() []string {
	return s.catalog.ContactLabels()
}

// Enroll starts a course for the logged-in user.
func (s *Service) Enroll(ctx context.Context, sessionID, courseID string) (domain.CourseProgress, error) {
	_, u, err := s.loggedIn(ctx, sessionID)
	if err != nil {
		return domain.CourseProgress{}, err
	}
	return s.progress.Enroll(ctx, u.ID, courseID)
}

// SubmitQuiz grades answers for the course and records the attempt.
func (s *Service) SubmitQuiz(ctx context.Context, sessionID, courseID string, answers []int) (QuizOutcome, error) {
	_, u, err := s.loggedIn(ctx, sessionID)
	if err != nil {
		return QuizOutcome{}, err
	}
	course, err := s.Course(courseID)
	if err != nil {
		return QuizOutcome{}, err
	}
	if len(answers) != len(course.Quiz) {
		return QuizOutcome{}, validation.New(errAnswerCount, validation.FieldError{
			Field: "answers",
			Error: fmt.Sprintf("expected %d answers, got %d", len(course.Quiz), len(answers)),
		})
	}

	res := assessment.Grade(course, answers)
	p, err := s.progress.RecordAttempt(ctx, u.ID, course.ID, res)
	if err != nil {
		return QuizOutcome{}, err
	}
	s.log.Info("quiz graded", "user_id", u.ID, "course", course.ID, "raw", res.Raw, "percent", res.Percent)
	return QuizOutcome{Result: res, Progress: p, Message: res.Message()}, nil
}

// Progress reports the logged-in user's progress over the catalog.
func (s *Service) Progress(ctx context.Context, sessionID string) (domain.Report, error) {
	_, u, err := s.loggedIn(ctx, sessionID)
	if err != nil {
		return domain.Report{}, err
	}
	return s.progress.Report(u), nil
}

// Export serializes the logged-in user's stored record as indented JSON.
func (s *Service) Export(ctx context.Context, sessionID string) (Export, error) {
	_, u, err := s.loggedIn(ctx, sessionID)
	if err != nil {
		return Export{}, err
	}
	data, err := ExportJSON(u)
	if err != nil {
		return Export{}, err
	}
	return Export{FileName: ExportFileName(u.ID), Data: data}, nil
}

// ExportFileName is the download name of a user's export.
func ExportFileName(userID string) string {
	return "restart50_" + userID + ".json"
}

// ExportJSON renders a user record as human-readable JSON.
func ExportJSON(u domain.User) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(u); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SendMessage stores a contact message. Blank name and email fall back to the
// logged-in user's, when there is one.
func (s *Service) SendMessage(ctx context.Context, sessionID, name, email, courseLabel, message string) (domain.ContactMessage, error) {
	_, u, err := s.loggedIn(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrNotLoggedIn) {
		return domain.ContactMessage{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = u.Name
	}
	if strings.TrimSpace(email) == "" {
		email = u.Email
	}
	return s.contacts.Submit(ctx, name, email, courseLabel, message)
}

// RecentMessages lists the logged-in user's latest contact messages.
func (s *Service) RecentMessages(ctx context.Context, sessionID string) ([]domain.ContactMessage, error) {
	_, u, err := s.loggedIn(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.contacts.ListByEmail(ctx, u.Email)
}

type askInput struct {
	Text string `json:"text" validate:"required"`
}

// Ask records the question and the assistant's answer in the session history.
// With auto-read on, the reply carries a speech cue.
func (s *Service) Ask(ctx context.Context, sessionID, text string) (ChatReply, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return ChatReply{}, err
	}
	if err := validation.Struct(askInput{Text: validation.Clean(text)}); err != nil {
		return ChatReply{}, err
	}

	var reply ChatReply
	reply.Question, reply.Answer = session.appendExchange(text, s.assistant.Reply(text))
	if prefs := session.Preferences(); prefs.AutoRead {
		cue := NewSpeechCue(reply.Answer.Text, prefs.Voice)
		reply.Speech = &cue
	}
	return reply, nil
}

// ChatHistory returns the entries to display, oldest first.
func (s *Service) ChatHistory(ctx context.Context, sessionID string) ([]domain.ChatEntry, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.History(ChatDisplayLimit), nil
}

// ClearChat empties the session's chat history.
func (s *Service) ClearChat(ctx context.Context, sessionID string) error {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	session.clearHistory()
	return nil
}

var errUnknownAction = errors.New("unknown preference action")

// UpdatePreferences applies a one-step accessibility change.
func (s *Service) UpdatePreferences(ctx context.Context, sessionID string, action PreferenceAction) (domain.Preferences, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.Preferences{}, err
	}
	prefs, ok := session.Apply(action)
	if !ok {
		return prefs, validation.New(errUnknownAction, validation.FieldError{Field: "action", Error: fmt.Sprintf("unknown action %q", action)})
	}
	return prefs, nil
}

type voiceInput struct {
	Voice string `json:"voice" validate:"required,oneof=female male default"`
}

// SetVoice changes the preferred voice label.
func (s *Service) SetVoice(ctx context.Context, sessionID, voice string) (domain.Preferences, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.Preferences{}, err
	}
	in := voiceInput{Voice: strings.ToLower(validation.Clean(voice))}
	if err := validation.Struct(in); err != nil {
		return session.Preferences(), err
	}
	return session.setVoice(domain.Voice(in.Voice)), nil
}

type speakInput struct {
	Text string `json:"text" validate:"required"`
}

// Speak builds a read-aloud cue using the session's preferred voice.
func (s *Service) Speak(ctx context.Context, sessionID, text string) (domain.SpeechCue, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.SpeechCue{}, err
	}
	if err := validation.Struct(speakInput{Text: validation.Clean(text)}); err != nil {
		return domain.SpeechCue{}, err
	}
	return NewSpeechCue(text, session.Preferences().Voice), nil
}

// NewSpeechCue escapes text for embedding in the page and flattens newlines.
func NewSpeechCue(text string, voice domain.Voice) domain.SpeechCue {
	return domain.SpeechCue{
		Text:  strings.ReplaceAll(html.EscapeString(text), "\n", " "),
		Voice: voice,
	}
}
