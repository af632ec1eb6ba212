package internal

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Tor control defaults. The settle time gives a freshly built circuit a
// moment to become usable before the next fetch attempt.
const (
	DefaultTorControlAddr = "127.0.0.1:9051"
	DefaultTorSocksAddr   = "127.0.0.1:9050"
	torSettleTime         = 2 * time.Second
	torDialTimeout        = 10 * time.Second
)

// TorRotator requests a new circuit from a local Tor control port. It
// implements IdentityRotator; callers treat failures as non-fatal.
type TorRotator struct {
	addr     string
	password string
	settle   time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	sleep    func(time.Duration)
}

// NewTorRotator creates a rotator against the given control endpoint. An
// empty password selects the control port's no-credential mode.
func NewTorRotator(addr, password string, logger zerolog.Logger) *TorRotator {
	if addr == "" {
		addr = DefaultTorControlAddr
	}
	return &TorRotator{
		addr:     addr,
		password: password,
		settle:   torSettleTime,
		timeout:  torDialTimeout,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Rotate authenticates against the control port and signals for a new
// identity. The connection is closed in all cases; after a successful signal
// the call blocks for the settle time before returning.
func (t *TorRotator) Rotate(ctx context.Context) error {
	dialer := net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return fmt.Errorf("connecting to tor control port: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
		return fmt.Errorf("setting control connection deadline: %w", err)
	}

	control := textproto.NewConn(conn)

	auth := "AUTHENTICATE"
	if t.password != "" {
		auth = fmt.Sprintf("AUTHENTICATE %q", t.password)
	}
	if err := t.command(control, auth); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	if err := t.command(control, "SIGNAL NEWNYM"); err != nil {
		return fmt.Errorf("requesting new identity: %w", err)
	}

	// Best effort; the deferred close tears the connection down regardless.
	_ = control.PrintfLine("QUIT")

	t.logger.Debug().Str("control", t.addr).Msg("tor identity rotated, settling")
	t.sleep(t.settle)
	return nil
}

// command sends one control-port command and checks for a 250 reply.
func (t *TorRotator) command(control *textproto.Conn, cmd string) error {
	if err := control.PrintfLine("%s", cmd); err != nil {
		return err
	}
	reply, err := control.ReadLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(reply, "250") {
		return fmt.Errorf("control port replied %q", reply)
	}
	return nil
}
