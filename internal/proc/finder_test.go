package proc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamewatch/flamewatch/internal/testutil"
)

func TestFindByCmdline(t *testing.T) {
	inspector := &fakeInspector{
		infos: []Info{
			{PID: 100, Name: "python", Cmdline: "python -m uvicorn main:app --port 8000"},
			{PID: 101, Name: "python", Cmdline: "python -m uvicorn app.api.main:app"},
			{PID: 102, Name: "bash", Cmdline: "bash -c sleep"},
			{PID: 103, Name: "python", Cmdline: "python -m Uvicorn main:app"},
			{PID: 104, Name: "kthread", Cmdline: ""},
		},
	}
	finder := NewFinder(inspector, testutil.NewTestLogger(t))

	matches := finder.FindByCmdline("uvicorn")

	require.Len(t, matches, 2)
	assert.Equal(t, int32(100), matches[0].PID)
	assert.Equal(t, int32(101), matches[1].PID)
}

func TestFindByCmdline_EmptyTable(t *testing.T) {
	finder := NewFinder(&fakeInspector{}, testutil.NewTestLogger(t))

	assert.Empty(t, finder.FindByCmdline("uvicorn"))
}

func TestFindByCmdline_EnumerationError(t *testing.T) {
	inspector := &fakeInspector{infosErr: errors.New("proc unavailable")}
	finder := NewFinder(inspector, testutil.NewTestLogger(t))

	assert.Empty(t, finder.FindByCmdline("uvicorn"))
}

func TestFindByPort(t *testing.T) {
	tests := []struct {
		name    string
		conns   []Connection
		port    int
		wantPID int32
		wantOK  bool
	}{
		{
			name:    "no connections",
			port:    8000,
			wantOK:  false,
			wantPID: 0,
		},
		{
			name: "listening on port",
			conns: []Connection{
				{PID: 42, Port: 8000, Listening: true},
			},
			port:    8000,
			wantPID: 42,
			wantOK:  true,
		},
		{
			name: "wrong port",
			conns: []Connection{
				{PID: 42, Port: 9100, Listening: true},
			},
			port:   8000,
			wantOK: false,
		},
		{
			name: "established but not listening",
			conns: []Connection{
				{PID: 42, Port: 8000, Listening: false},
			},
			port:   8000,
			wantOK: false,
		},
		{
			name: "listener without resolvable owner is skipped",
			conns: []Connection{
				{PID: 0, Port: 8000, Listening: true},
				{PID: 42, Port: 8000, Listening: true},
			},
			port:    8000,
			wantPID: 42,
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := NewFinder(&fakeInspector{conns: tt.conns}, testutil.NewTestLogger(t))

			pid, ok := finder.FindByPort(tt.port)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPID, pid)
		})
	}
}

func TestWaitForPort_AppearsLater(t *testing.T) {
	inspector := &fakeInspector{
		connsFn: func(call int) []Connection {
			if call < 3 {
				return nil
			}
			return []Connection{{PID: 77, Port: 8000, Listening: true}}
		},
	}
	finder := NewFinder(inspector, testutil.NewTestLogger(t),
		WithPollInterval(5*time.Millisecond))

	pid, ok := finder.WaitForPort(context.Background(), 8000, time.Second)

	require.True(t, ok)
	assert.Equal(t, int32(77), pid)
	assert.GreaterOrEqual(t, inspector.connCalls, 3)
}

func TestWaitForPort_Timeout(t *testing.T) {
	finder := NewFinder(&fakeInspector{}, testutil.NewTestLogger(t),
		WithPollInterval(10*time.Millisecond))

	timeout := 50 * time.Millisecond
	start := time.Now()
	_, ok := finder.WaitForPort(context.Background(), 8000, timeout)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, timeout)
	// Never blocks much longer than timeout plus one polling interval.
	assert.Less(t, elapsed, timeout+100*time.Millisecond)
}

func TestWaitForPort_ContextCancelled(t *testing.T) {
	finder := NewFinder(&fakeInspector{}, testutil.NewTestLogger(t),
		WithPollInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, ok := finder.WaitForPort(ctx, 8000, time.Minute)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}
