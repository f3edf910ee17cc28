// Package voice drives a realtime meditation call end to end: it fetches
// web call credentials from the backend, keeps the session bookkeeping in
// sync over HTTP, and streams provider events from a websocket.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the orchestrator's lifecycle phase. Transitions are linear:
// idle -> starting -> active -> (ended | errored) -> idle.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateActive   State = "active"
	StateEnded    State = "ended"
	StateErrored  State = "errored"
)

// TranscriptEntry is one utterance from the live call.
type TranscriptEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Handlers receives call lifecycle callbacks. All fields are optional.
// Callbacks run on the orchestrator's read loop goroutine.
type Handlers struct {
	OnStateChange func(State)
	OnSpeechStart func()
	OnSpeechEnd   func()
	OnTranscript  func(TranscriptEntry)
	OnError       func(error)
}

type credentials struct {
	ApiKey      string `json:"apiKey"`
	AssistantId string `json:"assistantId"`
	Type        string `json:"type"`
}

type startSessionResponse struct {
	SessionId string `json:"session_id"`
}

// providerEvent is the envelope pushed by the realtime endpoint.
type providerEvent struct {
	Type       string `json:"type"`
	Role       string `json:"role"`
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

// Dialer abstracts websocket.DefaultDialer for tests.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Config wires an Orchestrator to its backend and provider.
type Config struct {
	BackendURL  string // base URL of the meditation backend
	RealtimeURL string // provider realtime websocket endpoint
	AuthToken   string // bearer token for backend calls
	DurationMin int    // planned session length
	SessionType string // optional, backend defaults it
	HTTPClient  *http.Client
	Dialer      Dialer
	Handlers    Handlers
}

// Orchestrator owns a single voice meditation call at a time. Start begins
// a call, Stop ends it. Completion is reported to the backend exactly once
// per session regardless of how the call ends.
type Orchestrator struct {
	cfg    Config
	client *http.Client
	dialer Dialer

	mu         sync.Mutex
	state      State
	sessionID  string
	completed  bool
	transcript []TranscriptEntry
	conn       *websocket.Conn
	done       chan struct{}
	bookDone   chan struct{}
}

func NewOrchestrator(cfg Config) *Orchestrator {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	var dialer Dialer = cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &Orchestrator{
		cfg:    cfg,
		client: client,
		dialer: dialer,
		state:  StateIdle,
	}
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transcript returns a copy of the utterances captured so far. The log is
// reset on every Start.
func (o *Orchestrator) Transcript() []TranscriptEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]TranscriptEntry, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// Start fetches credentials, then dials the provider while the session is
// registered with the backend in the background. The bookkeeping call never
// blocks the voice connection; if it fails the call still connects and only
// completion reporting is skipped. Start returns once the call is active;
// events then flow through Handlers until the call ends.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.state == StateStarting || o.state == StateActive {
		o.mu.Unlock()
		return fmt.Errorf("voice: call already in progress")
	}
	o.transcript = nil
	o.sessionID = ""
	o.completed = false
	o.done = make(chan struct{})
	o.bookDone = nil
	o.mu.Unlock()

	o.setState(StateStarting)

	creds, err := o.fetchCredentials(ctx)
	if err != nil {
		o.failStart(fmt.Errorf("voice: fetch credentials: %w", err))
		return err
	}

	bookDone := make(chan struct{})
	o.mu.Lock()
	o.bookDone = bookDone
	o.mu.Unlock()

	go func() {
		defer close(bookDone)
		sessionID, err := o.startSession(ctx)
		if err != nil {
			o.emitError(fmt.Errorf("voice: start session: %w", err))
			return
		}
		o.mu.Lock()
		o.sessionID = sessionID
		o.mu.Unlock()
	}()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+creds.ApiKey)
	header.Set("X-Assistant-Id", creds.AssistantId)

	conn, resp, err := o.dialer.DialContext(ctx, o.cfg.RealtimeURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		err = fmt.Errorf("voice: dial provider: %w", err)
		o.failStart(err)
		o.completeSession()
		return err
	}

	o.mu.Lock()
	o.conn = conn
	o.mu.Unlock()

	o.setState(StateActive)
	go o.readLoop(conn)
	return nil
}

// Stop ends the call from the user's side. Safe to call when no call is
// active. The backend session is completed before the socket closes.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	conn := o.conn
	o.conn = nil
	active := o.state == StateActive || o.state == StateStarting
	o.mu.Unlock()

	if !active {
		return
	}

	o.completeSession()
	o.setState(StateEnded)
	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}
	o.setState(StateIdle)
}

// Wait blocks until the current call's read loop exits. Returns
// immediately when no call was started.
func (o *Orchestrator) Wait() {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (o *Orchestrator) readLoop(conn *websocket.Conn) {
	defer func() {
		o.mu.Lock()
		if o.done != nil {
			close(o.done)
			o.done = nil
		}
		o.mu.Unlock()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			o.mu.Lock()
			stopped := o.conn == nil
			o.conn = nil
			o.mu.Unlock()
			if stopped {
				return
			}
			o.completeSession()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				o.setState(StateEnded)
			} else {
				o.emitError(fmt.Errorf("voice: read: %w", err))
				o.setState(StateErrored)
			}
			conn.Close()
			o.setState(StateIdle)
			return
		}

		var evt providerEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			continue
		}
		o.handleEvent(conn, evt)
	}
}

func (o *Orchestrator) handleEvent(conn *websocket.Conn, evt providerEvent) {
	switch evt.Type {
	case "call-start":
		// already active by the time the provider confirms
	case "speech-start":
		if o.cfg.Handlers.OnSpeechStart != nil {
			o.cfg.Handlers.OnSpeechStart()
		}
	case "speech-end":
		if o.cfg.Handlers.OnSpeechEnd != nil {
			o.cfg.Handlers.OnSpeechEnd()
		}
	case "transcript":
		entry := TranscriptEntry{Role: evt.Role, Text: evt.Transcript}
		o.mu.Lock()
		o.transcript = append(o.transcript, entry)
		o.mu.Unlock()
		if o.cfg.Handlers.OnTranscript != nil {
			o.cfg.Handlers.OnTranscript(entry)
		}
	case "call-end":
		o.mu.Lock()
		o.conn = nil
		o.mu.Unlock()
		o.completeSession()
		o.setState(StateEnded)
		conn.Close()
		o.setState(StateIdle)
	case "error":
		o.mu.Lock()
		o.conn = nil
		o.mu.Unlock()
		o.completeSession()
		o.emitError(fmt.Errorf("voice: provider error: %s", evt.Error))
		o.setState(StateErrored)
		conn.Close()
		o.setState(StateIdle)
	}
}

func (o *Orchestrator) fetchCredentials(ctx context.Context) (*credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.cfg.BackendURL+"/vapi/token", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.AuthToken)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("backend returned %d: %s", resp.StatusCode, body)
	}

	var creds credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (o *Orchestrator) startSession(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"duration_min": o.cfg.DurationMin,
		"session_type": o.cfg.SessionType,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BackendURL+"/sessions/start", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("backend returned %d: %s", resp.StatusCode, body)
	}

	var started startSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		return "", err
	}
	return started.SessionId, nil
}

// completeSession reports the session as finished. It fires at most once
// per Start and is a no-op when no session id is held. Because the session
// is registered in the background, it first waits for that call to settle.
func (o *Orchestrator) completeSession() {
	o.mu.Lock()
	bookDone := o.bookDone
	o.mu.Unlock()
	if bookDone != nil {
		select {
		case <-bookDone:
		case <-time.After(10 * time.Second):
		}
	}

	o.mu.Lock()
	if o.completed || o.sessionID == "" {
		o.mu.Unlock()
		return
	}
	o.completed = true
	sessionID := o.sessionID
	o.mu.Unlock()

	payload, _ := json.Marshal(map[string]string{"session_id": sessionID})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BackendURL+"/sessions/complete", bytes.NewReader(payload))
	if err != nil {
		o.emitError(fmt.Errorf("voice: complete session: %w", err))
		return
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		o.emitError(fmt.Errorf("voice: complete session: %w", err))
		return
	}
	resp.Body.Close()
}

func (o *Orchestrator) failStart(err error) {
	o.emitError(err)
	o.setState(StateErrored)
	o.setState(StateIdle)
	o.mu.Lock()
	if o.done != nil {
		close(o.done)
		o.done = nil
	}
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	if o.cfg.Handlers.OnStateChange != nil {
		o.cfg.Handlers.OnStateChange(s)
	}
}

func (o *Orchestrator) emitError(err error) {
	if o.cfg.Handlers.OnError != nil {
		o.cfg.Handlers.OnError(err)
	}
}
