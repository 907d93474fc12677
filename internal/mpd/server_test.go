package mpd

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
)

// fakeServer speaks just enough of the MPD protocol for the client tests.
type fakeServer struct {
	t  *testing.T
	ln net.Listener

	mu       sync.Mutex
	status   map[string]string
	library  []map[string]string
	allowed  []string
	password string
	authed   bool
	received []string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{
		t:       t,
		ln:      ln,
		status:  map[string]string{"playlistlength": "0", "state": "stop", "single": "0"},
		allowed: append([]string{"commands", "password", "ping", "listallinfo", "find"}, RequiredCommands...),
	}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *fakeServer) address() Address {
	return Address{Network: "tcp", Addr: s.ln.Addr().String()}
}

func (s *fakeServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	w := bufio.NewWriter(conn)
	fmt.Fprint(w, "OK MPD 0.23.5\n")
	_ = w.Flush()

	r := bufio.NewScanner(conn)
	for r.Scan() {
		line := r.Text()
		name, args := splitCommand(line)
		if name == "close" {
			return
		}
		s.mu.Lock()
		s.received = append(s.received, line)
		reply := s.reply(name, args)
		s.mu.Unlock()
		fmt.Fprint(w, reply)
		_ = w.Flush()
	}
}

// reply must be called with s.mu held.
func (s *fakeServer) reply(name string, args []string) string {
	var b strings.Builder
	switch name {
	case "status":
		for k, v := range s.status {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	case "add":
		n := 0
		fmt.Sscanf(s.status["playlistlength"], "%d", &n)
		s.status["playlistlength"] = fmt.Sprint(n + 1)
	case "play", "pause", "ping":
	case "password":
		if len(args) != 1 || args[0] != s.password {
			return "ACK [3@0] {password} incorrect password\n"
		}
		s.authed = true
	case "commands":
		allowed := s.allowed
		if s.password != "" && !s.authed {
			allowed = []string{"commands", "password", "ping"}
		}
		for _, c := range allowed {
			fmt.Fprintf(&b, "command: %s\n", c)
		}
	case "listallinfo":
		b.WriteString("directory: music\n")
		for _, song := range s.library {
			writeSong(&b, song)
		}
	case "find":
		for _, song := range s.library {
			if len(args) == 2 && args[0] == "file" && song["file"] == args[1] {
				writeSong(&b, song)
			}
		}
	default:
		return fmt.Sprintf("ACK [5@0] {%s} unknown command\n", name)
	}
	b.WriteString("OK\n")
	return b.String()
}

func writeSong(b *strings.Builder, song map[string]string) {
	fmt.Fprintf(b, "file: %s\n", song["file"])
	for k, v := range song {
		if k != "file" {
			fmt.Fprintf(b, "%s: %s\n", k, v)
		}
	}
}

// splitCommand splits a request line into the command and its unquoted
// arguments.
func splitCommand(line string) (string, []string) {
	name, rest, _ := strings.Cut(line, " ")
	var args []string
	for rest = strings.TrimSpace(rest); rest != ""; rest = strings.TrimSpace(rest) {
		if rest[0] != '"' {
			arg, tail, _ := strings.Cut(rest, " ")
			args = append(args, arg)
			rest = tail
			continue
		}
		var arg strings.Builder
		i := 1
		for ; i < len(rest) && rest[i] != '"'; i++ {
			if rest[i] == '\\' && i+1 < len(rest) {
				i++
			}
			arg.WriteByte(rest[i])
		}
		args = append(args, arg.String())
		rest = rest[min(i+1, len(rest)):]
	}
	return name, args
}
