package enforce

import (
	"crypto/rand"
	"sync/atomic"
)

// Token is the unforgeable proof that a specific (tool, action, argument)
// proposal has been authorized. Its public surface is exhausted by "a
// tool's Execute function accepts one" and Nonce(), which a tool uses to
// verify the token belongs to the proposal it was handed.
//
// Token is declared as an interface with an unexported method (sealed)
// rather than a plain struct: no type declared outside this package can
// ever implement Token, because satisfying an unexported method requires
// being compiled as part of this package. A statement like
//
//	type forged struct{}
//	func (forged) sealed() {}
//	var _ enforce.Token = forged{}
//
// written in another package is a compile error (sealed is not in scope),
// which is the build-time guarantee against forgery, duplication by
// construction, and derivation from a converted value.
//
// The one case Go cannot reject at compile time is the zero value: `var t
// enforce.Token` is a legal nil interface. Tool implementations MUST treat
// a nil Token as invalid (see CheckNonce). This is the single unavoidable
// runtime check the design calls for as a last resort; it is not a gap in
// the forgery guarantee, since a nil token authorizes nothing.
type Token interface {
	sealed()

	// Nonce returns the nonce this token is bound to, for comparison
	// against the EvaluatedProposal's own nonce.
	Nonce() [16]byte

	// Redeem marks the token consumed. It returns false if the token has
	// already been redeemed by an earlier call — presenting a token to a
	// tool consumes it, so a second presentation is a programmer error.
	Redeem() bool
}

type token struct {
	nonce    [16]byte
	redeemed *redeemFlag
}

func (t *token) sealed() {}

func (t *token) Nonce() [16]byte { return t.nonce }

func (t *token) Redeem() bool { return t.redeemed.redeem() }

// redeemFlag gives Redeem atomic, idempotent, single-use semantics without
// requiring the Token interface to expose a lock.
type redeemFlag struct {
	done atomic.Bool
}

func (f *redeemFlag) redeem() bool {
	return f.done.CompareAndSwap(false, true)
}

// mintToken is reachable only from within this package — the facade's
// allow path (facade.go) and nowhere else.
func mintToken(nonce [16]byte) Token {
	return &token{nonce: nonce, redeemed: &redeemFlag{}}
}

// newNonce draws a fresh random nonce binding a Token to exactly one
// EvaluatedProposal instance.
func newNonce() [16]byte {
	var n [16]byte
	_, _ = rand.Read(n[:])
	return n
}
