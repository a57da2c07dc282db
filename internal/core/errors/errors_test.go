package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	err := New(CodeNotFound, "call graph document missing")
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("expected code in message, got %q", err.Error())
	}

	wrapped := Wrap(stderrors.New("open failed"), CodeInternal, "load metadata")
	if !strings.Contains(wrapped.Error(), "open failed") {
		t.Errorf("expected cause in message, got %q", wrapped.Error())
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeMalformedInput, "bad entry")
	if !IsCode(err, CodeMalformedInput) {
		t.Error("expected IsCode to match")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("expected IsCode to not match a different code")
	}
	if IsCode(stderrors.New("plain"), CodeInternal) {
		t.Error("plain errors should not match any code")
	}
}

func TestAddContext(t *testing.T) {
	err := New(CodeNotFound, "missing")
	err = AddContext(err, CtxPath, "output/proj/call_graph.json")

	var de *DomainError
	if !stderrors.As(err, &de) {
		t.Fatal("expected DomainError")
	}
	if de.Context[CtxPath] != "output/proj/call_graph.json" {
		t.Errorf("unexpected context: %v", de.Context)
	}

	plain := AddContext(stderrors.New("raw"), CtxModule, "uart")
	if !IsCode(plain, CodeInternal) {
		t.Error("wrapping a plain error should yield CodeInternal")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("cause")
	err := Wrap(cause, CodeInternal, "ctx")
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}
