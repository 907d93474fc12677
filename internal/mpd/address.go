package mpd

import (
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	defaultHost = "localhost"
	defaultPort = 6600
)

// Address is a dialable MPD endpoint plus an optional password.
type Address struct {
	Network  string
	Addr     string
	Password string
}

func (a Address) String() string {
	return a.Network + "://" + a.Addr
}

// Resolve builds the address to dial. Explicit values win, then MPD_HOST and
// MPD_PORT, then localhost:6600. The host may carry a password as
// "password@host"; a host starting with "/" is a unix socket path.
func Resolve(host string, port uint) (Address, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("MPD_HOST")
	}
	if strings.TrimSpace(host) == "" {
		host = defaultHost
	}

	password, host := splitPassword(strings.TrimSpace(host))

	if strings.HasPrefix(host, "/") {
		return Address{Network: "unix", Addr: host, Password: password}, nil
	}

	if port == 0 {
		if raw := strings.TrimSpace(os.Getenv("MPD_PORT")); raw != "" {
			p, err := strconv.ParseUint(raw, 10, 16)
			if err != nil {
				return Address{}, errors.Wrapf(err, "parse MPD_PORT %q", raw)
			}
			port = uint(p)
		}
	}
	if port == 0 {
		port = defaultPort
	}

	return Address{
		Network:  "tcp",
		Addr:     net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10)),
		Password: password,
	}, nil
}

// splitPassword separates "password@host". Only the last "@" splits, so
// passwords may contain "@".
func splitPassword(raw string) (password, host string) {
	idx := strings.LastIndex(raw, "@")
	if idx < 0 {
		return "", raw
	}
	return raw[:idx], raw[idx+1:]
}
