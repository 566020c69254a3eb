package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMapErrorString(t *testing.T) {
	err := &MapError{
		Op:   "marker.Update",
		Kind: KindLifecycle,
		Err:  stderrors.New("binding disposed"),
	}
	got := err.Error()
	want := "marker.Update [lifecycle]: binding disposed"
	if got != want {
		t.Errorf("MapError.Error() = %q, want %q", got, want)
	}
}

func TestMapErrorWithContext(t *testing.T) {
	err := &MapError{
		Op:         "platform.setProperty",
		Kind:       KindPlatform,
		Channel:    "drift/maps",
		Annotation: "a-1",
		Property:   "title",
		Err:        &ParseError{Channel: "drift/maps", DataType: "Result", Got: nil},
	}
	got := err.Error()
	for _, want := range []string{"channel=drift/maps", "annotation=a-1", "property=title"} {
		if !strings.Contains(got, want) {
			t.Errorf("error string %q should contain %q", got, want)
		}
	}
}

func TestMapErrorUnwrap(t *testing.T) {
	sentinel := stderrors.New("boom")
	err := &MapError{Op: "x", Err: sentinel}
	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should see the wrapped error")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindPlatform, "platform"},
		{KindInvalidValue, "invalid_value"},
		{KindLifecycle, "lifecycle"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorStringWithOp(t *testing.T) {
	err := &PanicError{
		Op:        "platform.HandleMethodCall",
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic in platform.HandleMethodCall: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *MapError
	handler := &testHandler{
		onError: func(err *MapError) {
			capturedErr = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&MapError{
		Op:   "test.op",
		Kind: KindInvalidValue,
		Err:  stderrors.New("bad visibility"),
	})

	if capturedErr == nil {
		t.Fatal("expected error to be captured")
	}
	if capturedErr.Op != "test.op" {
		t.Errorf("Op = %q, want %q", capturedErr.Op, "test.op")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportNil(t *testing.T) {
	called := false
	oldHandler := DefaultHandler
	SetHandler(&testHandler{onError: func(*MapError) { called = true }})
	defer SetHandler(oldHandler)

	Report(nil)
	ReportPanic(nil)
	if called {
		t.Error("nil reports should not reach the handler")
	}
}

func TestRecover(t *testing.T) {
	var capturedPanic *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if capturedPanic == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if capturedPanic.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "intentional test panic")
	}
	if capturedPanic.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", capturedPanic.Op, "test.recover")
	}
	if capturedPanic.StackTrace == "" {
		t.Error("expected a stack trace")
	}
}

func TestSetHandlerNil(t *testing.T) {
	oldHandler := DefaultHandler
	defer SetHandler(oldHandler)

	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandlerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	h := &LogHandler{Logger: &l}

	h.HandleError(&MapError{
		Op:         "marker.translateVisibility",
		Kind:       KindInvalidValue,
		Annotation: "a-7",
		Property:   "titleVisibility",
		Err:        stderrors.New("unknown visibility 9"),
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	checks := map[string]string{
		"level":      "warn",
		"op":         "marker.translateVisibility",
		"kind":       "invalid_value",
		"annotation": "a-7",
		"property":   "titleVisibility",
		"error":      "unknown visibility 9",
	}
	for k, want := range checks {
		if got := entry[k]; got != want {
			t.Errorf("entry[%q] = %v, want %q", k, got, want)
		}
	}
}

func TestLogHandlerPanic(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	h := &LogHandler{Logger: &l, Verbose: true}

	h.HandlePanic(&PanicError{Op: "bridge", Value: "oops", StackTrace: "frame"})

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, `"stack":"frame"`) {
		t.Errorf("unexpected panic log: %s", out)
	}
}

type testHandler struct {
	onError func(*MapError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *MapError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
