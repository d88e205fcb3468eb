package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// SignatureAlgorithm names a supported HMAC digest.
type SignatureAlgorithm string

const (
	AlgorithmSHA256 SignatureAlgorithm = "sha256"
	AlgorithmSHA1   SignatureAlgorithm = "sha1"
)

var hashConstructors = map[SignatureAlgorithm]func() hash.Hash{
	AlgorithmSHA256: sha256.New,
	AlgorithmSHA1:   sha1.New,
}

// Verifier checks webhook signatures such as Meta's X-Hub-Signature-256
// header against the raw request body. The hash primitive is fixed at
// construction time rather than resolved per call.
type Verifier struct {
	secret    []byte
	algorithm SignatureAlgorithm
	newHash   func() hash.Hash
}

// NewVerifier builds a Verifier for the given app secret and algorithm.
func NewVerifier(secret string, algorithm SignatureAlgorithm) (*Verifier, error) {
	constructor, ok := hashConstructors[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported signature algorithm %q", algorithm)
	}
	return &Verifier{
		secret:    []byte(secret),
		algorithm: algorithm,
		newHash:   constructor,
	}, nil
}

// Verify reports whether header matches the HMAC of body. The header may
// carry an "sha256=<hex>" style prefix; a prefix naming a different
// algorithm, bad hex, or an empty header all yield false. Verify never
// panics and never errors; the caller decides how to reject the request.
func (v *Verifier) Verify(body []byte, header string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}

	if prefix, rest, found := strings.Cut(header, "="); found {
		if prefix != string(v.algorithm) {
			return false
		}
		header = rest
	}

	provided, err := hex.DecodeString(header)
	if err != nil {
		return false
	}

	mac := hmac.New(v.newHash, v.secret)
	mac.Write(body)

	// hmac.Equal compares in constant time.
	return hmac.Equal(provided, mac.Sum(nil))
}

// Sign computes the full header value for body, prefix included. Used by
// tests and by callers that need to re-sign payloads for forwarding.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(v.newHash, v.secret)
	mac.Write(body)
	return string(v.algorithm) + "=" + hex.EncodeToString(mac.Sum(nil))
}
