package capability

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpilot/internal/session"
	"cloudpilot/util"
)

// gameServer answers each line with reply(line) and records what it
// saw.  It serves a single client.
type gameServer struct {
	ln    net.Listener
	reply func(string) string

	mu    sync.Mutex
	lines []string
	done  chan struct{}
}

func startGameServer(t *testing.T, reply func(string) string) *gameServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &gameServer{ln: ln, reply: reply, done: make(chan struct{})}
	t.Cleanup(func() { ln.Close() })

	go func() {
		defer close(s.done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			s.mu.Lock()
			s.lines = append(s.lines, sc.Text())
			s.mu.Unlock()
			if _, err := io.WriteString(conn, s.reply(sc.Text())+"\r\n"); err != nil {
				return
			}
		}
	}()
	return s
}

func (s *gameServer) connect(t *testing.T) *session.Client {
	t.Helper()
	c, err := session.Dial(context.Background(), session.Config{
		Address:     s.ln.Addr().String(),
		ReadTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

// finish closes the client and returns every line the server received.
func (s *gameServer) finish(t *testing.T, c *session.Client) []string {
	t.Helper()
	_, _ = c.Close()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not finish")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func worldWith(name string, x float64) func(string) string {
	return func(line string) string {
		if line == "list" {
			return `{"Width":2048,"Height":1152,"Alive":1,"Clouds":[` +
				`{"Player":"` + name + `","Color":"blue","Vapor":100,"Pos":{"X":` +
				strconv.FormatFloat(x, 'f', -1, 64) + `,"Y":500}}]}`
		}
		return "ok"
	}
}

// ── Pilot ────────────────────────────────────────────────────────────

func TestPilot_LeftHalfPushesRight(t *testing.T) {
	srv := startGameServer(t, worldWith("HansAI", 100))
	c := srv.connect(t)

	p := &Pilot{Name: "HansAI", Color: "orange", Strength: 10, Logger: util.NewLogger(0)}
	require.NoError(t, p.Handle(context.Background(), c))

	want := []string{
		"nameHansAI", "typeorange", "play", "list",
		"move33;0",
		"move-10;0", "move0;-10", "move10;0", "move0;10",
		"kill", "quit",
	}
	assert.Equal(t, want, srv.finish(t, c))
}

func TestPilot_RightHalfPushesLeft(t *testing.T) {
	srv := startGameServer(t, worldWith("HansAI", 1500))
	c := srv.connect(t)

	p := &Pilot{Name: "HansAI", Color: "blue", Strength: 10}
	require.NoError(t, p.Handle(context.Background(), c))

	lines := srv.finish(t, c)
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "move-33;0", lines[4])
}

func TestPilot_SkipsCentrePushWhenNotOnBoard(t *testing.T) {
	srv := startGameServer(t, worldWith("somebody-else", 100))
	c := srv.connect(t)

	p := &Pilot{Name: "HansAI", Color: "blue", Strength: 10}
	require.NoError(t, p.Handle(context.Background(), c))

	lines := srv.finish(t, c)
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "move-10;0", lines[4], "tour starts right after stat")
}

func TestPilot_PlayRejected(t *testing.T) {
	srv := startGameServer(t, func(line string) string {
		if line == "play" {
			return "err: game is full"
		}
		return "ok"
	})
	c := srv.connect(t)

	p := &Pilot{Name: "HansAI", Color: "blue", Strength: 10}
	err := p.Handle(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game is full")

	assert.Equal(t, []string{"nameHansAI", "typeblue", "play", "quit"}, srv.finish(t, c))
}

func TestPilot_ContextCancelledDuringPause(t *testing.T) {
	srv := startGameServer(t, worldWith("HansAI", 100))
	c := srv.connect(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := &Pilot{Name: "HansAI", Color: "blue", Strength: 10, Pause: time.Hour}
	err := p.Handle(ctx, c)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	lines := srv.finish(t, c)
	assert.NotContains(t, lines, "kill")
}

// ── Shell ────────────────────────────────────────────────────────────

type scriptReader struct {
	lines  []string
	closed bool
}

func (r *scriptReader) ReadLine(string) (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	l := r.lines[0]
	r.lines = r.lines[1:]
	return l, nil
}

func (r *scriptReader) Close() error { r.closed = true; return nil }

func TestShell_Commands(t *testing.T) {
	srv := startGameServer(t, worldWith("Bob", 100))
	c := srv.connect(t)

	in := &scriptReader{lines: []string{
		"name Bob",
		"color red",
		"",
		"play",
		"move 3 -4",
		"angle 270",
		"angle 180 5",
		"stat",
		"kill",
		"quit",
		"play", // never reached
	}}
	out := &bytes.Buffer{}
	sh := &Shell{In: in, Out: out, Strength: 10}

	require.NoError(t, sh.Handle(context.Background(), c))
	assert.True(t, in.closed)

	want := []string{
		"nameBob", "typered", "play", "move3;-4", "move0;10", "move5;0",
		"list", "kill", "quit",
	}
	assert.Equal(t, want, srv.finish(t, c))

	text := out.String()
	assert.Contains(t, text, "leader")
	assert.Contains(t, text, "players: Bob")
	assert.Contains(t, text, "me: pos (100.0, 500.0)")
}

func TestShell_BadInputDoesNotReachServer(t *testing.T) {
	srv := startGameServer(t, func(string) string { return "ok" })
	c := srv.connect(t)

	in := &scriptReader{lines: []string{
		"move 1",
		"move a b",
		"angle north",
		"angle 0 1e300",
		"dance",
		"help",
	}}
	out := &bytes.Buffer{}
	sh := &Shell{In: in, Out: out, Strength: 10}

	require.NoError(t, sh.Handle(context.Background(), c))
	assert.Equal(t, []string{"quit"}, srv.finish(t, c))

	text := out.String()
	assert.Contains(t, text, "usage: move <dx> <dy>")
	assert.Contains(t, text, "invalid strength")
	assert.Contains(t, text, `unknown command "dance"`)
	assert.Contains(t, text, "commands:")
}

func TestShell_StatRaw(t *testing.T) {
	srv := startGameServer(t, worldWith("Bob", 100))
	c := srv.connect(t)

	out := &bytes.Buffer{}
	sh := &Shell{In: &scriptReader{lines: []string{"stat raw"}}, Out: out}
	require.NoError(t, sh.Handle(context.Background(), c))
	srv.finish(t, c)

	assert.True(t, strings.HasPrefix(out.String(), `{"Width":2048`))
}

func TestScannerReader(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewScannerReader(strings.NewReader("play\nkill\n"), out)

	l, err := r.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "play", l)
	l, err = r.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "kill", l)
	_, err = r.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
	assert.NoError(t, r.Close())
}
