// internal/game/codes.go
package game

import (
	cryptorand "crypto/rand"
	"math/rand"
	"time"
)

// RoomCodeLength is the fixed length of every room code.
const RoomCodeLength = 4

// roomCodeAlphabet excludes visually ambiguous characters (0/O, 1/I).
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRoomCode returns a random 4-character room code drawn from the
// ambiguity-free alphabet. Collisions with live rooms are possible and are
// handled by the caller.
func GenerateRoomCode() string {
	buf := make([]byte, RoomCodeLength)
	// crypto/rand.Read never fails on supported platforms.
	_, _ = cryptorand.Read(buf)

	code := make([]byte, RoomCodeLength)
	for i, b := range buf {
		code[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(code)
}

// GenerateSecretCode returns a random secret of 4 distinct digits, produced by
// a Fisher-Yates shuffle of the ten digits.
func GenerateSecretCode() string {
	digits := []byte("0123456789")
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := len(digits) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits[:SecretLength])
}
