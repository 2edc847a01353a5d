package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/prismappolice/control-room-dsr/internal/config"
)

func TestNewAppliesDefaults(t *testing.T) {
	s := New(config.HTTP{ListenAddr: ":8080"}, http.NotFoundHandler())
	if s.ReadTimeout != DefaultReadTimeout || s.WriteTimeout != DefaultWriteTimeout {
		t.Fatalf("timeouts = %v / %v", s.ReadTimeout, s.WriteTimeout)
	}
	if s.ReadHeaderTimeout == 0 || s.IdleTimeout == 0 {
		t.Fatal("header or idle timeout unset")
	}

	s = New(config.HTTP{ListenAddr: ":8080", ReadTimeout: 5 * time.Second, WriteTimeout: 7 * time.Second}, nil)
	if s.ReadTimeout != 5*time.Second || s.WriteTimeout != 7*time.Second {
		t.Fatalf("configured timeouts ignored: %v / %v", s.ReadTimeout, s.WriteTimeout)
	}
}
