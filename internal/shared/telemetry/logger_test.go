package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
)

func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = orig
	}()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read output: %v", err)
	}
	return buf.Bytes()
}

func TestWarnFlattensErrors(t *testing.T) {
	out := captureStdout(t, func() {
		Warn("ledger.corrupt_record", map[string]any{
			"id":    "abc",
			"error": errors.New("unexpected end of JSON input"),
		})
	})

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(out), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["msg"] != "ledger.corrupt_record" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["error"] != "unexpected end of JSON input" {
		t.Fatalf("expected error string, got %v", payload["error"])
	}
}

func TestReservedKeysWin(t *testing.T) {
	out := captureStdout(t, func() {
		Info("real", map[string]any{"msg": "spoofed", "level": "debug"})
	})

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(out), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if payload["msg"] != "real" || payload["level"] != "info" {
		t.Fatalf("fields overrode reserved keys: %v", payload)
	}
}
