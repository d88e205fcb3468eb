package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	verifier, err := NewVerifier("app-secret", AlgorithmSHA256)
	require.NoError(t, err)

	body := []byte(`{"object":"whatsapp_business_account","entry":[]}`)
	header := verifier.Sign(body)

	assert.True(t, verifier.Verify(body, header))
}

func TestVerifier_WrongSecret(t *testing.T) {
	signer, err := NewVerifier("app-secret", AlgorithmSHA256)
	require.NoError(t, err)
	verifier, err := NewVerifier("other-secret", AlgorithmSHA256)
	require.NoError(t, err)

	body := []byte(`{"object":"whatsapp_business_account","entry":[]}`)

	assert.False(t, verifier.Verify(body, signer.Sign(body)))
}

func TestVerifier_TamperedBody(t *testing.T) {
	verifier, err := NewVerifier("app-secret", AlgorithmSHA256)
	require.NoError(t, err)

	header := verifier.Sign([]byte("original body"))

	assert.False(t, verifier.Verify([]byte("tampered body"), header))
}

func TestVerifier_HeaderShapes(t *testing.T) {
	verifier, err := NewVerifier("app-secret", AlgorithmSHA256)
	require.NoError(t, err)

	body := []byte("payload")
	signed := verifier.Sign(body)
	bareHex := signed[len("sha256="):]

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{name: "prefixed", header: signed, want: true},
		{name: "bare hex", header: bareHex, want: true},
		{name: "surrounding whitespace", header: " " + signed + " ", want: true},
		{name: "empty", header: "", want: false},
		{name: "wrong algorithm prefix", header: "sha1=" + bareHex, want: false},
		{name: "bad hex", header: "sha256=not-hex-at-all", want: false},
		{name: "truncated digest", header: "sha256=" + bareHex[:10], want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, verifier.Verify(body, tt.header))
		})
	}
}

func TestVerifier_SHA1(t *testing.T) {
	verifier, err := NewVerifier("app-secret", AlgorithmSHA1)
	require.NoError(t, err)

	body := []byte("payload")
	header := verifier.Sign(body)

	assert.True(t, verifier.Verify(body, header))
	assert.Contains(t, header, "sha1=")
}

func TestNewVerifier_UnsupportedAlgorithm(t *testing.T) {
	_, err := NewVerifier("app-secret", SignatureAlgorithm("md5"))
	assert.Error(t, err)
}
