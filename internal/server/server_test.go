package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deppfellow/notify-dispatch/internal/config"
	"github.com/rs/zerolog"
)

func newTestServer() *Server {
	log := zerolog.Nop()
	return &Server{
		Config: &config.Config{},
		Logger: &log,
	}
}

func TestShutdown_RunsClosersInReverse(t *testing.T) {
	s := newTestServer()

	var order []string
	s.OnShutdown("first", func() error { order = append(order, "first"); return nil })
	s.OnShutdown("second", func() error { order = append(order, "second"); return nil })

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if strings.Join(order, ",") != "second,first" {
		t.Errorf("closer order = %v, want [second first]", order)
	}

	// A second shutdown must not run the closers again.
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
	if len(order) != 2 {
		t.Errorf("closers ran %d times, want 2", len(order))
	}
}

func TestShutdown_JoinsErrors(t *testing.T) {
	s := newTestServer()
	cause := errors.New("broker gone")

	ran := false
	s.OnShutdown("kafka writer", func() error { return cause })
	s.OnShutdown("other", func() error { ran = true; return nil })

	err := s.Shutdown(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("Shutdown() error = %v, want %v", err, cause)
	}
	if !ran {
		t.Error("a failing closer should not stop the others")
	}
	if !strings.Contains(err.Error(), "kafka writer") {
		t.Errorf("error %q should name the closer", err)
	}
}

func TestStart_WithoutSetup(t *testing.T) {
	if err := newTestServer().Start(); err == nil {
		t.Error("Start() error = nil before SetupHTTPServer")
	}
}
