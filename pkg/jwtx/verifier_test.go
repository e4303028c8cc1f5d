package jwtx_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/tabkeeper/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTrip(t *testing.T) {
	for _, alg := range jwtx.Algorithms {
		t.Run(alg, func(t *testing.T) {
			tok, err := jwtx.Encode(jwtx.NewHeader(alg), testPayload(), testSecret, alg)
			require.NoError(t, err)

			got, err := jwtx.Decode(tok, testSecret)
			require.NoError(t, err)
			require.Equal(t, testPayload(), got)
		})
	}
}

func TestDecodeWithAudience(t *testing.T) {
	p := testPayload()
	p.Audience = "web"

	tok, err := jwtx.Encode(jwtx.Header{}, p, testSecret, jwtx.AlgorithmHS256)
	require.NoError(t, err)

	got, err := jwtx.Decode(tok, testSecret)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestDecodeWrongSecret(t *testing.T) {
	tok, err := jwtx.Encode(jwtx.Header{}, testPayload(), testSecret, jwtx.AlgorithmHS256)
	require.NoError(t, err)

	_, err = jwtx.Decode(tok, []byte("fedcba9876543210fedcba9876543210"))
	require.ErrorIs(t, err, jwtx.ErrInvalidSignature)
}

func TestDecodeSegmentCount(t *testing.T) {
	tok, err := jwtx.Encode(jwtx.Header{}, testPayload(), testSecret, jwtx.AlgorithmHS256)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")

	cases := map[string]string{
		"empty":        "",
		"one segment":  parts[0],
		"two segments": parts[0] + "." + parts[1],
		"four":         tok + "." + parts[2],
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := jwtx.Decode(in, testSecret)
			require.ErrorIs(t, err, jwtx.ErrMalformed)
		})
	}
}

func TestDecodeTampered(t *testing.T) {
	tok, err := jwtx.Encode(jwtx.Header{}, testPayload(), testSecret, jwtx.AlgorithmHS256)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")

	flip := func(s string, i int) string {
		b := []byte(s)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		return string(b)
	}

	t.Run("every signature character", func(t *testing.T) {
		for i := range len(parts[2]) {
			forged := parts[0] + "." + parts[1] + "." + flip(parts[2], i)
			_, err := jwtx.Decode(forged, testSecret)
			require.Error(t, err, "position %d", i)
		}
	})

	t.Run("payload swapped", func(t *testing.T) {
		other := testPayload()
		other.Subject = "mallory"
		otherTok, err := jwtx.Encode(jwtx.Header{}, other, testSecret, jwtx.AlgorithmHS256)
		require.NoError(t, err)
		otherParts := strings.Split(otherTok, ".")

		forged := parts[0] + "." + otherParts[1] + "." + parts[2]
		_, err = jwtx.Decode(forged, testSecret)
		require.ErrorIs(t, err, jwtx.ErrInvalidSignature)
	})

	t.Run("algorithm downgraded to none", func(t *testing.T) {
		// {"alg":"none","typ":"JWT"}
		forged := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." + parts[1] + "."
		_, err := jwtx.Decode(forged, testSecret)
		require.Error(t, err)
	})
}

func TestDecodeGarbage(t *testing.T) {
	_, err := jwtx.Decode("not.a.token", testSecret)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}
