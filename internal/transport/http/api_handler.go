package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"restart50-service/internal/app"
	"restart50-service/internal/domain"
	"restart50-service/internal/logger"
	"restart50-service/internal/validation"
)

// SessionHeader carries the session id on every API call.
const SessionHeader = "X-Session-ID"

var errBadBody = errors.New("malformed request body")

// APIHandler exposes the learner use cases as JSON over HTTP.
type APIHandler struct {
	service *app.Service
	log     *logger.Logger
}

func NewAPIHandler(service *app.Service, log *logger.Logger) *APIHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &APIHandler{service: service, log: log}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.startSession)
	mux.HandleFunc("DELETE /api/sessions", h.endSession)

	mux.HandleFunc("GET /api/preferences", h.preferences)
	mux.HandleFunc("PUT /api/preferences", h.setVoice)
	mux.HandleFunc("POST /api/preferences/{action}", h.applyPreference)

	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("POST /api/logout", h.logout)
	mux.HandleFunc("GET /api/me", h.me)
	mux.HandleFunc("GET /api/me/export", h.export)

	mux.HandleFunc("GET /api/courses", h.courses)
	mux.HandleFunc("GET /api/courses/{id}", h.course)
	mux.HandleFunc("POST /api/courses/{id}/enroll", h.enroll)
	mux.HandleFunc("POST /api/courses/{id}/quiz", h.submitQuiz)
	mux.HandleFunc("GET /api/progress", h.progress)

	mux.HandleFunc("POST /api/messages", h.sendMessage)
	mux.HandleFunc("GET /api/messages", h.recentMessages)
	mux.HandleFunc("GET /api/contact-labels", h.contactLabels)

	mux.HandleFunc("POST /api/chat", h.ask)
	mux.HandleFunc("GET /api/chat", h.chatHistory)
	mux.HandleFunc("DELETE /api/chat", h.clearChat)

	mux.HandleFunc("POST /api/speech", h.speak)
}

type sessionResponse struct {
	SessionID   string             `json:"sessionId"`
	Preferences domain.Preferences `json:"preferences"`
}

func (h *APIHandler) startSession(w http.ResponseWriter, r *http.Request) {
	session := h.service.StartSession(r.Context())
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: session.ID(), Preferences: session.Preferences()})
}

func (h *APIHandler) endSession(w http.ResponseWriter, r *http.Request) {
	h.service.EndSession(r.Context(), sessionID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) preferences(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Session(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Preferences())
}

func (h *APIHandler) setVoice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Voice string `json:"voice"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	prefs, err := h.service.SetVoice(r.Context(), sessionID(r), in.Voice)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *APIHandler) applyPreference(w http.ResponseWriter, r *http.Request) {
	action := app.PreferenceAction(r.PathValue("action"))
	prefs, err := h.service.UpdatePreferences(r.Context(), sessionID(r), action)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type loginResponse struct {
	User    domain.User `json:"user"`
	Created bool        `json:"created"`
}

func (h *APIHandler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	u, created, err := h.service.Login(r.Context(), sessionID(r), in.Name, in.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, loginResponse{User: u, Created: created})
}

func (h *APIHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), sessionID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.CurrentUser(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *APIHandler) export(w http.ResponseWriter, r *http.Request) {
	exp, err := h.service.Export(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}

// questionView hides the answer key.
type questionView struct {
	Text    string   `json:"q"`
	Choices []string `json:"choices"`
}

type courseView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	Level       string         `json:"level"`
	Hours       int            `json:"hours"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Quiz        []questionView `json:"quiz"`
}

func newCourseView(c domain.Course) courseView {
	v := courseView{
		ID:          c.ID,
		Title:       c.Title,
		Category:    c.Category,
		Level:       c.Level,
		Hours:       c.Hours,
		Description: c.Description,
		Image:       c.Image,
		Quiz:        make([]questionView, 0, len(c.Quiz)),
	}
	for _, q := range c.Quiz {
		v.Quiz = append(v.Quiz, questionView{Text: q.Text, Choices: q.Choices})
	}
	return v
}

func (h *APIHandler) courses(w http.ResponseWriter, r *http.Request) {
	all := h.service.Courses()
	views := make([]courseView, 0, len(all))
	for _, c := range all {
		views = append(views, newCourseView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *APIHandler) course(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Course(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCourseView(c))
}

func (h *APIHandler) enroll(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Enroll(r.Context(), sessionID(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *APIHandler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Answers []int `json:"answers"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	out, err := h.service.SubmitQuiz(r.Context(), sessionID(r), r.PathValue("id"), in.Answers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) progress(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Progress(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *APIHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Course  string `json:"course"`
		Message string `json:"message"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	msg, err := h.service.SendMessage(r.Context(), sessionID(r), in.Name, in.Email, in.Course, in.Message)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *APIHandler) recentMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.RecentMessages(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *APIHandler) contactLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ContactLabels())
}

type textInput struct {
	Text string `json:"text"`
}

func (h *APIHandler) ask(w http.ResponseWriter, r *http.Request) {
	var in textInput
	if !h.decode(w, r, &in) {
		return
	}
	reply, err := h.service.Ask(r.Context(), sessionID(r), in.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *APIHandler) chatHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ChatHistory(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *APIHandler) clearChat(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearChat(r.Context(), sessionID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) speak(w http.ResponseWriter, r *http.Request) {
	var in textInput
	if !h.decode(w, r, &in) {
		return
	}
	cue, err := h.service.Speak(r.Context(), sessionID(r), in.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cue)
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.fail(w, r, validation.New(errBadBody, validation.FieldError{Field: "body", Error: err.Error()}))
		return false
	}
	return true
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBodyFor(err, status))
}

func sessionID(r *http.Request) string {
	return r.Header.Get(SessionHeader)
}
