package common

import "crypto/rand"

// GenerateRandByteArray returns n bytes from crypto/rand.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

const pinAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// MakePin returns a short human-shareable code of the given length. Letters
// and digits that are easy to confuse (I, O, 0, 1) are excluded.
func MakePin(length int) string {
	b := GenerateRandByteArray(length)
	out := make([]byte, length)
	for i, v := range b {
		out[i] = pinAlphabet[int(v)%len(pinAlphabet)]
	}
	return string(out)
}
