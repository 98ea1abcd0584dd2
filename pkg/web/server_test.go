package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
)

type fakeStats struct {
	Frames uint64 `json:"frames"`
}

func newTestServer() *Server {
	return NewServer(":0", "capture", "test-id", func() any {
		return fakeStats{Frames: 42}
	})
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer()

	resp, err := s.app.Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
		Agent  string `json:"agent"`
		ID     string `json:"id"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if body.Status != "ok" {
		t.Errorf("status field: got %q, want ok", body.Status)
	}
	if body.Agent != "capture" {
		t.Errorf("agent field: got %q, want capture", body.Agent)
	}
	if body.ID != "test-id" {
		t.Errorf("id field: got %q, want test-id", body.ID)
	}
}

func TestServer_Stats(t *testing.T) {
	s := newTestServer()

	resp, err := s.app.Test(httptest.NewRequest("GET", "/stats", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var body fakeStats
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if body.Frames != 42 {
		t.Errorf("frames: got %d, want 42", body.Frames)
	}
}

func TestServer_WsRequiresUpgrade(t *testing.T) {
	s := newTestServer()

	resp, err := s.app.Test(httptest.NewRequest("GET", "/ws", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 426 {
		t.Errorf("status: got %d, want 426 Upgrade Required", resp.StatusCode)
	}
}

func TestHub_DropsNothingWithNoClients(t *testing.T) {
	h := newHub("test")
	done := make(chan struct{})
	go h.run(done)
	defer close(done)

	// Broadcast with no clients must not block or panic.
	for i := 0; i < 200; i++ {
		h.BroadcastBinary([]byte{0xff, 0xd8})
	}
	if got := h.ClientCount(); got != 0 {
		t.Errorf("ClientCount: got %d, want 0", got)
	}
}
