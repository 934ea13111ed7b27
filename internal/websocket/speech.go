package websocket

import (
	"context"
	"sync"

	"github.com/dhollis/minutes/internal/speech"
)

// Client message actions.
const (
	actionTranscript  = "transcript"
	actionSpeechError = "speech_error"
	actionPermission  = "permission"
)

// SpeechBridge adapts the websocket channel into the speech capability: the
// browser owns the microphone and the platform recognition service, the
// server owns the state machine. Commands go out as broadcasts; transcript
// segments, recognition errors, and permission resolutions come back as
// client messages.
//
// It implements speech.Recognizer and speech.PermissionGate.
type SpeechBridge struct {
	hub *Hub

	mu       sync.Mutex
	onResult func(segments []string)
	onError  func(kind string)
	perm     speech.PermissionState
	pending  chan speech.PermissionState
}

func NewSpeechBridge(hub *Hub) *SpeechBridge {
	b := &SpeechBridge{
		hub:  hub,
		perm: speech.PermissionUndetermined,
	}
	hub.OnInbound(b.handle)
	return b
}

func (b *SpeechBridge) handle(in Inbound) {
	switch in.Action {
	case actionTranscript:
		b.mu.Lock()
		fn := b.onResult
		b.mu.Unlock()
		if fn != nil {
			fn(in.Segments)
		}
	case actionSpeechError:
		b.mu.Lock()
		fn := b.onError
		b.mu.Unlock()
		if fn != nil {
			fn(in.Kind)
		}
	case actionPermission:
		state := speech.PermissionState(in.State)
		b.mu.Lock()
		b.perm = state
		pending := b.pending
		b.pending = nil
		b.mu.Unlock()
		if pending != nil {
			pending <- state
		}
	}
}

// Start tells the connected client to begin a continuous recognition session
// and routes its results into the callbacks until Stop.
func (b *SpeechBridge) Start(ctx context.Context, onResult func([]string), onError func(string)) error {
	b.mu.Lock()
	b.onResult = onResult
	b.onError = onError
	b.mu.Unlock()

	b.hub.Broadcast(Message{Type: "speech_start"})
	return nil
}

// Stop tears the recognition session down. Clearing the callbacks before
// broadcasting guarantees no results are delivered after Stop returns.
func (b *SpeechBridge) Stop() {
	b.mu.Lock()
	b.onResult = nil
	b.onError = nil
	b.mu.Unlock()

	b.hub.Broadcast(Message{Type: "speech_stop"})
}

// Query returns the last permission state reported by the client. A client
// that has never reported is undetermined.
func (b *SpeechBridge) Query(ctx context.Context) (speech.PermissionState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.perm, nil
}

// Request prompts the client for one-time media access and blocks until it
// reports the outcome or ctx expires.
func (b *SpeechBridge) Request(ctx context.Context) (speech.PermissionState, error) {
	ch := make(chan speech.PermissionState, 1)
	b.mu.Lock()
	b.pending = ch
	b.mu.Unlock()

	b.hub.Broadcast(Message{Type: "permission_request"})

	select {
	case state := <-ch:
		return state, nil
	case <-ctx.Done():
		b.mu.Lock()
		if b.pending == ch {
			b.pending = nil
		}
		b.mu.Unlock()
		return speech.PermissionUndetermined, ctx.Err()
	}
}
