// Package speech holds the recording state machine over the platform's
// optional speech-recognition and microphone-permission capabilities. The
// capabilities are resolved once at startup and may be absent; everything
// here degrades gracefully when they are.
package speech

import (
	"context"
	"errors"
	"sync"
)

// PermissionState is the microphone permission as reported by the platform.
type PermissionState string

const (
	PermissionGranted      PermissionState = "granted"
	PermissionDenied       PermissionState = "denied"
	PermissionUndetermined PermissionState = "undetermined"
)

// Sentinel errors surfaced to the user as messages.
var (
	ErrNotSupported     = errors.New("speech recognition is not supported")
	ErrPermissionDenied = errors.New("microphone access denied")
)

// Recognizer is a continuous, interim-results-enabled recognition session.
// After Start, the recognizer delivers every incremental result to the
// result callback as the full list of segments captured so far, and any
// runtime failure to the error callback as an error-kind string. Stop
// guarantees no callbacks are delivered afterwards.
type Recognizer interface {
	Start(ctx context.Context, onResult func(segments []string), onError func(kind string)) error
	Stop()
}

// PermissionGate queries and requests microphone access.
type PermissionGate interface {
	Query(ctx context.Context) (PermissionState, error)
	Request(ctx context.Context) (PermissionState, error)
}

// deniedKind is the recognition error kind meaning access was revoked.
const deniedKind = "not-allowed"

// Session is the recording state machine: Idle → Recording on toggle with
// permission granted, back to Idle on toggle or recognition error. Each
// transcript event replaces content wholesale through the transcript
// callback; there is no buffered intermediate state.
type Session struct {
	mu        sync.Mutex
	rec       Recognizer
	perm      PermissionGate
	recording bool

	onTranscript func(segments []string)
	onMessage    func(msg string)
}

// NewSession wires the capabilities to the consumer callbacks. rec and perm
// may be nil when the platform lacks them. onMessage receives user-facing
// failure text (unsupported capability, permission denial).
func NewSession(rec Recognizer, perm PermissionGate, onTranscript func([]string), onMessage func(string)) *Session {
	return &Session{
		rec:          rec,
		perm:         perm,
		onTranscript: onTranscript,
		onMessage:    onMessage,
	}
}

// Supported reports whether the platform has a speech capability at all.
func (s *Session) Supported() bool {
	return s.rec != nil
}

// Recording reports whether a recognition session is live.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Toggle starts recording when idle and stops it when live. Starting runs
// the permission ladder: already denied refuses outright, undetermined
// prompts once and proceeds only on grant.
func (s *Session) Toggle(ctx context.Context) error {
	s.mu.Lock()
	if s.recording {
		s.stopLocked()
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if s.rec == nil {
		s.message(ErrNotSupported.Error())
		return ErrNotSupported
	}

	if s.perm != nil {
		state, err := s.perm.Query(ctx)
		if err != nil {
			return err
		}
		switch state {
		case PermissionDenied:
			s.message(ErrPermissionDenied.Error())
			return ErrPermissionDenied
		case PermissionUndetermined:
			state, err = s.perm.Request(ctx)
			if err != nil {
				return err
			}
			if state != PermissionGranted {
				s.message(ErrPermissionDenied.Error())
				return ErrPermissionDenied
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording {
		return nil
	}
	if err := s.rec.Start(ctx, s.handleResult, s.handleError); err != nil {
		return err
	}
	s.recording = true
	return nil
}

// Close tears the session down, stopping any live recognition.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if !s.recording {
		return
	}
	s.recording = false
	s.rec.Stop()
}

func (s *Session) handleResult(segments []string) {
	s.mu.Lock()
	live := s.recording
	s.mu.Unlock()
	if live && s.onTranscript != nil {
		s.onTranscript(segments)
	}
}

// handleResult/handleError run on the recognizer's callback path. Any
// recognition error force-stops recording; only the denial cause surfaces
// a user message.
func (s *Session) handleError(kind string) {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()

	if kind == deniedKind {
		s.message(ErrPermissionDenied.Error())
	}
}

func (s *Session) message(msg string) {
	if s.onMessage != nil {
		s.onMessage(msg)
	}
}
