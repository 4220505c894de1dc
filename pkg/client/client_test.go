package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hbassist/hba/pkg/reset"
)

// serve starts h on a unix socket and returns a client connected to it.
func serve(t *testing.T, h http.Handler) *Client {
	t.Helper()
	// Unix socket paths are length limited, keep it short.
	dir, err := os.MkdirTemp("", "hba")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	sock := filepath.Join(dir, "s")

	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	srv := &http.Server{Handler: h}
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	return NewClient(sock)
}

func TestDaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.Get("/version")
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("err = %v, want ErrDaemonNotRunning", err)
	}
}

func TestStatusErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/reset", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`"factory reset already running"`))
	})
	c := serve(t, mux)

	_, err := c.StartReset()
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Message() != "factory reset already running" {
		t.Errorf("status error = %v", se)
	}

	_, err = c.Get("/nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if _, err := c.Send("PATCH", "/reset", ""); err == nil {
		t.Errorf("expected error for unsupported method")
	}
}

func TestGetVersion(t *testing.T) {
	c := serve(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"v1.2.3"`))
	}))
	v, err := c.GetVersion()
	if err != nil || v != "v1.2.3" {
		t.Fatalf("GetVersion = %q, %v", v, err)
	}
}

func TestWaitReset(t *testing.T) {
	var calls atomic.Int32
	c := serve(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		switch {
		case n < 3:
			_, _ = w.Write([]byte(`{"runId":"r1","phase":"Running","progress":0.3,"step":"recipes"}`))
		case n < 5:
			_, _ = w.Write([]byte(`{"runId":"r1","phase":"Running","progress":0.5,"step":"photos"}`))
		default:
			_, _ = w.Write([]byte(`{"runId":"r1","phase":"Completed","progress":1}`))
		}
	}))

	var updates []float64
	st, err := c.WaitReset(context.Background(), "r1", time.Millisecond, func(s reset.Status) {
		updates = append(updates, s.Progress)
	})
	if err != nil {
		t.Fatalf("WaitReset: %v", err)
	}
	if st.Phase != reset.PhaseCompleted {
		t.Errorf("phase = %q", st.Phase)
	}
	want := []float64{0.3, 0.5, 1}
	if len(updates) != len(want) {
		t.Fatalf("updates = %v, want %v", updates, want)
	}
	for i := range want {
		if updates[i] != want[i] {
			t.Errorf("updates = %v, want %v", updates, want)
			break
		}
	}
}

func TestWaitResetOtherRun(t *testing.T) {
	c := serve(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"runId":"r2","phase":"Running","progress":0.1}`))
	}))
	if _, err := c.WaitReset(context.Background(), "r1", time.Millisecond, nil); err == nil {
		t.Fatalf("expected an error when another run is current")
	}
}

func TestTimerRequests(t *testing.T) {
	var gotBody, gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /timers", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"t1","name":"Boil","state":"idle","durationSeconds":5400}`))
	})
	mux.HandleFunc("POST /timers/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.PathValue("id") == "all" {
			_, _ = w.Write([]byte(`2`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"t1","state":"running"}`))
	})
	c := serve(t, mux)

	tm, err := c.AddTimer("Boil", "boiling", 90*time.Minute)
	if err != nil {
		t.Fatalf("AddTimer: %v", err)
	}
	if tm.ID != "t1" || tm.DurationSeconds != 5400 {
		t.Errorf("timer = %+v", tm)
	}
	if gotBody != `{"name":"Boil","category":"boiling","duration":"1h30m0s"}` {
		t.Errorf("body = %s", gotBody)
	}

	tm, err = c.TimerAction("t1", "start")
	if err != nil || tm.State != "running" || gotPath != "/timers/t1/start" {
		t.Errorf("TimerAction = %+v, %v, path %s", tm, err, gotPath)
	}

	n, err := c.PauseAllTimers(true)
	if err != nil || n != 2 || gotPath != "/timers/all/resume" {
		t.Errorf("PauseAllTimers = %d, %v, path %s", n, err, gotPath)
	}
}
