package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/yookoala/submarines/comms"
	"github.com/yookoala/submarines/protocol"
	"github.com/yookoala/submarines/validator"
)

// DefaultReadyTimeout bounds the READY wait of RaceNegotiator.
const DefaultReadyTimeout = 2 * time.Second

// StartNegotiator decides which peer sends the first guess. Each side
// sends exactly one READY and consumes exactly one.
type StartNegotiator interface {
	Negotiate(ctx context.Context, s *comms.Session) (starts bool, err error)
}

// NonceNegotiator exchanges random nonces in READY. The smaller nonce
// starts. On a tie the listening peer starts.
type NonceNegotiator struct {
	// Nonce returns this peer's nonce. Defaults to 128 random bits in
	// hex.
	Nonce func() (string, error)
}

func randomNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Negotiate implements StartNegotiator.
func (n NonceNegotiator) Negotiate(ctx context.Context, s *comms.Session) (bool, error) {
	log := comms.GetLogger(ctx)

	gen := n.Nonce
	if gen == nil {
		gen = randomNonce
	}
	mine, err := gen()
	if err != nil {
		return false, fmt.Errorf("generate nonce: %w", err)
	}
	if err := s.Send(protocol.Ready{Nonce: mine}); err != nil {
		return false, fmt.Errorf("send ready: %w", err)
	}

	f, err := awaitQuiet(ctx, s, validator.NewReady(s, validator.RequireNonce()))
	if err != nil {
		return false, err
	}
	theirs, _ := f.String(protocol.FieldNonce)

	var starts bool
	switch {
	case mine < theirs:
		starts = true
	case mine == theirs:
		starts = s.Role() == comms.RoleListener
	}
	log.Infof("nonce %s against %s, starts: %t", mine, theirs, starts)
	return starts, nil
}

// RaceNegotiator is the timing race older peers use. The peer that
// hears no READY within ReadyTimeout starts, then waits for the late
// READY without a bound. If both peers become ready within the timeout
// neither starts, so it is only suited to a human on each side.
type RaceNegotiator struct {
	ReadyTimeout time.Duration
}

// Negotiate implements StartNegotiator.
func (n RaceNegotiator) Negotiate(ctx context.Context, s *comms.Session) (bool, error) {
	log := comms.GetLogger(ctx)

	timeout := n.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	if err := s.Send(protocol.Ready{}); err != nil {
		return false, fmt.Errorf("send ready: %w", err)
	}

	v := validator.NewReady(s)
	wctx, cancel := context.WithTimeout(ctx, timeout)
	_, err := awaitQuiet(wctx, s, v)
	cancel()
	if err == nil {
		log.Info("opponent was ready first")
		return false, nil
	}
	if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return false, err
	}

	log.Infof("no ready within %s, starting", timeout)
	if _, err := awaitQuiet(ctx, s, v); err != nil {
		return false, err
	}
	return true, nil
}
