package checkout

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Signer computes a keyed digest over a receipt's monetary fields so a
// stored receipt that was tampered with after settlement fails verification.
type Signer struct {
	key []byte
}

// NewSigner derives a signing key from the configured secret.
func NewSigner(secret string) *Signer {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &Signer{key: key}
}

// Digest returns the hex digest binding the transaction id to its amounts.
func (s *Signer) Digest(r Receipt) string {
	h, err := blake2b.New256(s.key)
	if err != nil {
		// Key length is normalized in NewSigner; New256 cannot fail.
		panic(err)
	}
	fmt.Fprintf(h, "%s|%d|%d|%d|%d|%d|%s",
		r.TransactionID, r.SubtotalPaisa, r.DiscountPaisa, r.TaxPaisa, r.TipPaisa, r.TotalPaisa, r.PaymentMethod)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the digest and compares it in constant time.
func (s *Signer) Verify(r Receipt) bool {
	return subtle.ConstantTimeCompare([]byte(s.Digest(r)), []byte(r.Digest)) == 1
}
