package platform

import (
	"sync"
)

// BridgeCall is one method invocation captured by a RecordingBridge.
type BridgeCall struct {
	Channel string
	Method  string
	Args    map[string]any
}

// RecordingBridge is a NativeBridge that records every method call and
// accepts it. Methods listed in Fail return the mapped error instead.
// Event stream starts and stops are recorded as Streams entries.
type RecordingBridge struct {
	mu      sync.Mutex
	calls   []BridgeCall
	streams []string

	// Fail maps method names to the error returned for them.
	Fail map[string]error
}

// InvokeMethod implements NativeBridge.
func (b *RecordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, _ := DefaultCodec.Decode(args)
	m, _ := decoded.(map[string]any)

	b.mu.Lock()
	b.calls = append(b.calls, BridgeCall{Channel: channel, Method: method, Args: m})
	err := b.Fail[method]
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return DefaultCodec.Encode(nil)
}

// StartEventStream implements NativeBridge.
func (b *RecordingBridge) StartEventStream(channel string) error {
	b.mu.Lock()
	b.streams = append(b.streams, "start "+channel)
	b.mu.Unlock()
	return nil
}

// StopEventStream implements NativeBridge.
func (b *RecordingBridge) StopEventStream(channel string) error {
	b.mu.Lock()
	b.streams = append(b.streams, "stop "+channel)
	b.mu.Unlock()
	return nil
}

// Calls returns a copy of the recorded calls.
func (b *RecordingBridge) Calls() []BridgeCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BridgeCall, len(b.calls))
	copy(out, b.calls)
	return out
}

// Methods returns the method names of the recorded calls, in order.
func (b *RecordingBridge) Methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.Method
	}
	return out
}

// Streams returns the recorded stream starts and stops.
func (b *RecordingBridge) Streams() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.streams))
	copy(out, b.streams)
	return out
}

// Reset discards recorded calls and streams.
func (b *RecordingBridge) Reset() {
	b.mu.Lock()
	b.calls = nil
	b.streams = nil
	b.mu.Unlock()
}

// SetupTestBridge installs a RecordingBridge and a synchronous dispatch
// function for testing. The cleanup function should be testing.T.Cleanup or
// equivalent; it registers a teardown that calls ResetForTest.
//
//	bridge := platform.SetupTestBridge(t.Cleanup)
func SetupTestBridge(cleanup func(func())) *RecordingBridge {
	bridge := &RecordingBridge{}
	SetNativeBridge(bridge)
	RegisterDispatch(func(cb func()) { cb() })
	cleanup(ResetForTest)
	return bridge
}
