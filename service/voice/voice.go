// Package voice bridges browser speech recognition to the chat and speech
// services. Recognition itself runs in the browser; the server keeps one
// session per user, turns final transcripts into spoken replies, and tells
// the client when to restart recognition or give up.
package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/metrics"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/retry"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/factory"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/chat"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/speech"
	log "github.com/sirupsen/logrus"
)

var (
	serviceOnce sync.Once
	instance    *Service
	instanceErr error
)

// sessionHistoryLimit caps how many turns a session keeps. The chat relay
// clamps again to its own window, so this only bounds session memory.
const sessionHistoryLimit = 2 * constant.HistoryWindow

// Sender delivers one server event to the client side of a session, usually
// over a websocket.
type Sender func(event *model.VoiceServerEvent) error

// Service manages live voice sessions, at most one per user.
type Service struct {
	chatService   *chat.Service
	speechService *speech.Service
	policy        retry.Policy

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService builds the shared voice service on top of the chat and speech
// services.
func NewService(repositoryFactory factory.Factory) (*Service, error) {
	serviceOnce.Do(func() {
		chatService, err := chat.NewService(repositoryFactory)
		if err != nil {
			instanceErr = fmt.Errorf("create chat service: %w", err)
			return
		}
		speechService, err := speech.NewService()
		if err != nil {
			instanceErr = fmt.Errorf("create speech service: %w", err)
			return
		}
		cfg := config.GetInstance()
		policy := retry.NewPolicy(
			cfg.GetIntOrDefault(config.RetryMaxAttempts, config.DefaultRetryMaxAttempts),
			time.Duration(cfg.GetIntOrDefault(config.RetryBaseDelayMs, config.DefaultRetryBaseDelayMs))*time.Millisecond,
		)
		instance = NewServiceWithClients(chatService, speechService, policy)
	})
	return instance, instanceErr
}

// NewServiceWithClients wires a service instance directly, bypassing the
// singleton.
func NewServiceWithClients(chatService *chat.Service, speechService *speech.Service, policy retry.Policy) *Service {
	return &Service{
		chatService:   chatService,
		speechService: speechService,
		policy:        policy,
		sessions:      make(map[string]*Session),
	}
}

// OpenSession registers a session for the user and returns it. A user has at
// most one live session; opening a second while one exists fails.
func (s *Service) OpenSession(userID string, send Sender) (*Session, *model.Error) {
	if userID == "" {
		return nil, model.NewErrorWithMessage(model.ErrorParams, "userId is required")
	}
	if send == nil {
		return nil, model.NewError(model.ErrorVoiceSession, fmt.Errorf("session has no event sender"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[userID]; exists {
		return nil, model.NewError(model.ErrorVoiceSession, fmt.Errorf("voice session already active for user %s", userID))
	}

	session := &Session{
		userID: userID,
		svc:    s,
		send:   send,
		state:  constant.VoiceStateIdle,
		voice:  constant.DefaultVoice,
		speed:  constant.DefaultSpeechSpeed,
	}
	s.sessions[userID] = session
	metrics.GetInstance().VoiceSessionsActive.Inc()
	log.Infof("voice session opened for user %s", userID)
	return session, nil
}

// CloseSession tears the session down: any in-flight reply is cancelled and
// awaited, then the user slot frees up.
func (s *Service) CloseSession(session *Session) {
	if session == nil {
		return
	}

	s.mu.Lock()
	current, exists := s.sessions[session.userID]
	if !exists || current != session {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, session.userID)
	s.mu.Unlock()

	session.shutdown()
	metrics.GetInstance().VoiceSessionsActive.Dec()
	log.Infof("voice session closed for user %s", session.userID)
}

// ActiveSessions returns the number of live sessions.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Session is one user's live voice session. Events arrive from the socket
// read loop; replies are produced on a per-turn goroutine so a new transcript
// can interrupt the previous reply mid-synthesis.
type Session struct {
	userID string
	svc    *Service
	send   Sender

	mu          sync.Mutex
	listening   bool
	state       constant.VoiceSessionState
	failures    int
	turn        uint64
	voice       constant.Voice
	speed       float64
	history     []model.ChatMessage
	synthCancel context.CancelFunc

	wg sync.WaitGroup
}

// UserID returns the owning user.
func (sess *Session) UserID() string {
	return sess.userID
}

// State returns the session's current state.
func (sess *Session) State() constant.VoiceSessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// HandleEvent dispatches one client event. Unknown types are logged and
// dropped so a newer client cannot wedge the session.
func (sess *Session) HandleEvent(event *model.VoiceClientEvent) {
	if event == nil {
		return
	}
	switch event.Type {
	case constant.VoiceEventStart:
		sess.handleStart(event)
	case constant.VoiceEventStop:
		sess.handleStop()
	case constant.VoiceEventTranscript:
		sess.handleTranscript(event)
	case constant.VoiceEventError:
		sess.handleRecognitionError(event.Reason)
	default:
		log.Warnf("voice session for user %s dropped unknown event type %q", sess.userID, event.Type)
	}
}

// handleStart begins listening. Starting while already listening is a no-op.
func (sess *Session) handleStart(event *model.VoiceClientEvent) {
	sess.mu.Lock()
	if sess.listening {
		sess.mu.Unlock()
		return
	}
	sess.listening = true
	sess.failures = 0
	sess.voice = constant.Voice(event.Voice).OrDefault()
	sess.speed = constant.ClampSpeed(event.Speed)
	sess.state = constant.VoiceStateListening
	sess.mu.Unlock()

	sess.emitState(constant.VoiceStateListening)
}

// handleStop ends listening and interrupts any reply still being produced.
func (sess *Session) handleStop() {
	sess.mu.Lock()
	if !sess.listening {
		sess.mu.Unlock()
		return
	}
	sess.listening = false
	sess.state = constant.VoiceStateIdle
	if sess.synthCancel != nil {
		sess.synthCancel()
		sess.synthCancel = nil
	}
	sess.mu.Unlock()

	sess.emitState(constant.VoiceStateIdle)
}

// handleTranscript reacts to recognition results. Interim transcripts are
// ignored; a final transcript interrupts the previous reply, resets the
// failure count and kicks off a new reply turn.
func (sess *Session) handleTranscript(event *model.VoiceClientEvent) {
	if !event.Final {
		return
	}
	text := strings.TrimSpace(event.Transcript)
	if text == "" {
		return
	}

	sess.mu.Lock()
	if !sess.listening {
		sess.mu.Unlock()
		return
	}
	sess.failures = 0
	if sess.synthCancel != nil {
		sess.synthCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess.synthCancel = cancel
	sess.turn++
	turn := sess.turn

	sess.history = append(sess.history, model.ChatMessage{Role: constant.RoleUser, Content: text})
	if len(sess.history) > sessionHistoryLimit {
		sess.history = sess.history[len(sess.history)-sessionHistoryLimit:]
	}
	history := make([]model.ChatMessage, len(sess.history))
	copy(history, sess.history)
	voice := sess.voice
	speed := sess.speed
	sess.mu.Unlock()

	sess.wg.Add(1)
	go sess.respond(ctx, turn, history, voice, speed)
}

// handleRecognitionError applies the retry policy to recognition failures the
// client reports. Transient failures get a backoff-scheduled restart until
// the budget runs out; anything else ends the run with an error event.
func (sess *Session) handleRecognitionError(reason string) {
	sess.mu.Lock()
	if !sess.listening {
		sess.mu.Unlock()
		return
	}

	if !constant.IsTransientVoiceError(reason) {
		sess.listening = false
		sess.state = constant.VoiceStateIdle
		sess.mu.Unlock()

		sess.emit(&model.VoiceServerEvent{
			Type:    constant.VoiceEventError,
			Message: fmt.Sprintf("voice recognition failed: %s", reason),
		})
		sess.emitState(constant.VoiceStateIdle)
		return
	}

	sess.failures++
	failures := sess.failures
	if sess.svc.policy.Exhausted(failures) {
		sess.listening = false
		sess.state = constant.VoiceStateIdle
		sess.mu.Unlock()

		log.Warnf("voice session for user %s giving up after %d recognition failures", sess.userID, failures)
		sess.emit(&model.VoiceServerEvent{
			Type:    constant.VoiceEventGiveUp,
			Message: constant.GiveUpMessage,
		})
		sess.emitState(constant.VoiceStateIdle)
		return
	}
	sess.mu.Unlock()

	sess.emit(&model.VoiceServerEvent{
		Type:    constant.VoiceEventRestart,
		Attempt: failures,
		DelayMs: sess.svc.policy.Delay(failures).Milliseconds(),
	})
}

// respond runs one reply turn: transcript through the chat relay, reply
// through synthesis, both delivered only while this turn is still current.
func (sess *Session) respond(ctx context.Context, turn uint64, history []model.ChatMessage, voice constant.Voice, speed float64) {
	defer sess.wg.Done()

	if !sess.transition(turn, constant.VoiceStateThinking) {
		return
	}

	chatResponse, svcErr := sess.svc.chatService.Complete(ctx, &model.ChatRequest{
		Messages: history,
		UserID:   sess.userID,
	})
	if svcErr != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warnf("voice reply for user %s failed at chat relay: %s", sess.userID, svcErr.String())
		if sess.transition(turn, constant.VoiceStateListening) {
			sess.emit(&model.VoiceServerEvent{
				Type:    constant.VoiceEventError,
				Message: svcErr.Message,
			})
		}
		return
	}

	reply := chatResponse.Response
	sess.rememberReply(turn, reply)
	if !sess.transition(turn, constant.VoiceStateSpeaking) {
		return
	}

	speakResponse, svcErr := sess.svc.speechService.Synthesize(ctx, &model.SpeakRequest{
		Text:  reply,
		Voice: voice.String(),
		Speed: speed,
	})
	if ctx.Err() != nil {
		return
	}

	event := &model.VoiceServerEvent{
		Type: constant.VoiceEventReply,
		Text: reply,
	}
	if svcErr != nil {
		// The exchange still answers in text when synthesis is down.
		log.Warnf("voice reply synthesis for user %s failed, sending text only: %s", sess.userID, svcErr.String())
	} else {
		event.Audio = speakResponse.Audio
		event.Format = speakResponse.Format
	}

	if !sess.isCurrent(turn) {
		return
	}
	sess.emit(event)
	sess.transition(turn, constant.VoiceStateListening)
}

// rememberReply appends the assistant turn to session history, unless a newer
// transcript has already superseded this turn.
func (sess *Session) rememberReply(turn uint64, reply string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.turn != turn || !sess.listening {
		return
	}
	sess.history = append(sess.history, model.ChatMessage{Role: constant.RoleAssistant, Content: reply})
	if len(sess.history) > sessionHistoryLimit {
		sess.history = sess.history[len(sess.history)-sessionHistoryLimit:]
	}
}

// transition moves the session into state and emits a state event, but only
// while the given turn is still the current one and the session listens.
func (sess *Session) transition(turn uint64, state constant.VoiceSessionState) bool {
	sess.mu.Lock()
	if sess.turn != turn || !sess.listening {
		sess.mu.Unlock()
		return false
	}
	sess.state = state
	sess.mu.Unlock()

	sess.emitState(state)
	return true
}

func (sess *Session) isCurrent(turn uint64) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.turn == turn && sess.listening
}

func (sess *Session) emitState(state constant.VoiceSessionState) {
	sess.emit(&model.VoiceServerEvent{
		Type:  constant.VoiceEventState,
		State: state.String(),
	})
}

// emit pushes one event to the client. Send failures are logged, not
// returned; the socket owner notices the broken connection on its own.
func (sess *Session) emit(event *model.VoiceServerEvent) {
	if err := sess.send(event); err != nil {
		log.Warnf("voice session for user %s failed to push %s event: %v", sess.userID, event.Type, err)
	}
}

// shutdown cancels the in-flight turn and waits for its goroutine.
func (sess *Session) shutdown() {
	sess.mu.Lock()
	sess.listening = false
	sess.state = constant.VoiceStateIdle
	if sess.synthCancel != nil {
		sess.synthCancel()
		sess.synthCancel = nil
	}
	sess.mu.Unlock()

	sess.wg.Wait()
}
