package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/protocol"
)

// Account is a user the fake authority accepts
type Account struct {
	Password string
	Verified bool
	Profile  model.Profile
}

// Frame is an event the authority received from a client
type Frame struct {
	protocol.Envelope
	Token string
}

// Authority is an in-process quiz server speaking the REST and websocket
// protocols. It keeps one session whose pin is Pin.
type Authority struct {
	*httptest.Server
	Router *mux.Router

	Pin       string
	Questions []model.Question

	// Received gets every client event
	Received chan Frame

	upgrader websocket.Upgrader

	mu       sync.Mutex
	accounts map[string]Account
	tokens   map[string]model.Profile
	quizzes  []map[string]any
	conns    map[*websocket.Conn]*sync.Mutex
	players  []model.Player
	current  int
}

// NewAuthority starts a fake server. Close it when done.
func NewAuthority() *Authority {
	a := &Authority{
		Router:   mux.NewRouter(),
		Pin:      "482193",
		Received: make(chan Frame, 64),
		accounts: make(map[string]Account),
		tokens:   make(map[string]model.Profile),
		conns:    make(map[*websocket.Conn]*sync.Mutex),
	}
	a.Questions = []model.Question{
		{Text: "Capital of France?", Options: []model.Option{{Text: "Paris"}, {Text: "Rome"}}, TimeLimit: 10},
		{Text: "Capital of Italy?", Options: []model.Option{{Text: "Paris"}, {Text: "Rome"}}, TimeLimit: 10},
	}
	a.quizzes = []map[string]any{
		{"id": uuid.NewString(), "title": "Capitals", "questionCount": len(a.Questions)},
	}

	api := a.Router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", a.login).Methods(http.MethodPost)
	api.HandleFunc("/quizzes", a.authed(a.listQuizzes)).Methods(http.MethodGet)
	api.HandleFunc("/sessions", a.authed(a.createSession)).Methods(http.MethodPost)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	a.Router.HandleFunc("/ws", a.serveWS)

	a.Server = httptest.NewServer(a.Router)
	return a
}

// AddAccount registers a user that can log in
func (a *Authority) AddAccount(email string, acc Account) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[email] = acc
}

// QuizID returns the id of the only quiz
func (a *Authority) QuizID() string {
	return a.quizzes[0]["id"].(string)
}

// SocketURL returns the websocket endpoint
func (a *Authority) SocketURL() string {
	return "ws" + strings.TrimPrefix(a.URL, "http") + "/ws"
}

// Players returns the roster the authority holds
func (a *Authority) Players() []model.Player {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.Player{}, a.players...)
}

// Broadcast sends one event to every connected client
func (a *Authority) Broadcast(event protocol.EventName, data any) {
	frame, err := protocol.Encode(event, data)
	if err != nil {
		panic(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for conn, wmu := range a.conns {
		wmu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, frame)
		wmu.Unlock()
	}
}

// NextQuestion advances to the next question, or ends the game with
// results when none are left
func (a *Authority) NextQuestion(results []model.Player) {
	a.mu.Lock()
	a.current++
	idx := a.current
	a.mu.Unlock()

	if idx < len(a.Questions) {
		a.Broadcast(protocol.EventNextQuestion, a.Questions[idx])
		return
	}
	a.Broadcast(protocol.EventGameOver, results)
}

// DropConnections closes every client connection without a close frame
func (a *Authority) DropConnections() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for conn := range a.conns {
		_ = conn.Close()
		delete(a.conns, conn)
	}
}

// Connections returns the number of open client connections
func (a *Authority) Connections() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}

// Expect waits for the next client event named name, skipping others
func (a *Authority) Expect(t testing.TB, name protocol.EventName) Frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f := <-a.Received:
			if f.Event == name {
				return f
			}
		case <-timeout:
			t.Fatalf("authority did not receive %s", name)
			return Frame{}
		}
	}
}

func (a *Authority) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}

	a.mu.Lock()
	acc, ok := a.accounts[req.Email]
	a.mu.Unlock()

	switch {
	case !ok || acc.Password != req.Password:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	case !acc.Verified:
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Email not verified"})
	default:
		token := "tok_" + uuid.NewString()
		a.mu.Lock()
		a.tokens[token] = acc.Profile
		a.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": acc.Profile})
	}
}

func (a *Authority) authed(next func(http.ResponseWriter, *http.Request, model.Profile)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		profile, ok := a.tokens[token]
		a.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]string{"code": "UNAUTHORIZED", "message": "Login required"},
			})
			return
		}
		next(w, r, profile)
	}
}

func (a *Authority) listQuizzes(w http.ResponseWriter, r *http.Request, _ model.Profile) {
	writeJSON(w, http.StatusOK, a.quizzes)
}

func (a *Authority) createSession(w http.ResponseWriter, r *http.Request, host model.Profile) {
	var req struct {
		QuizID string `json:"quizId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.QuizID != a.QuizID() {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]string{"code": "QUIZ_NOT_FOUND", "message": "Quiz not found"},
		})
		return
	}

	a.mu.Lock()
	a.players = []model.Player{{ID: host.ID, Name: host.Name}}
	a.current = 0
	a.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"pin": a.Pin})
}

func (a *Authority) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	wmu := &sync.Mutex{}
	a.mu.Lock()
	a.conns[conn] = wmu
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.conns, conn)
		a.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			continue
		}
		select {
		case a.Received <- Frame{Envelope: env, Token: token}:
		default:
		}
		a.handle(conn, wmu, env)
	}
}

func (a *Authority) handle(conn *websocket.Conn, wmu *sync.Mutex, env protocol.Envelope) {
	switch env.Event {
	case protocol.EventPlayerJoin:
		var join protocol.JoinPayload
		_ = json.Unmarshal(env.Data, &join)
		if join.Pin != a.Pin {
			frame, _ := protocol.Encode(protocol.EventGameError, "Session not found")
			wmu.Lock()
			_ = conn.WriteMessage(websocket.TextMessage, frame)
			wmu.Unlock()
			return
		}
		a.mu.Lock()
		known := false
		for _, p := range a.players {
			known = known || p.ID == join.PlayerID
		}
		if !known {
			a.players = append(a.players, model.Player{ID: join.PlayerID, Name: join.Nickname})
		}
		roster := append([]model.Player{}, a.players...)
		a.mu.Unlock()
		a.Broadcast(protocol.EventUpdatePlayers, roster)

	case protocol.EventStartGame:
		a.mu.Lock()
		a.current = 0
		a.mu.Unlock()
		a.Broadcast(protocol.EventGameStarted, a.Questions[0])
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
