package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// roomSalt binds derived keys to this application. Every peer must derive the
// same key from the same secret, so the salt is fixed.
var roomSalt = []byte("rechat/room-key/v1")

var (
	// ErrEmptySecret is returned by NewRoomBox for a blank secret.
	ErrEmptySecret = errors.New("room secret is empty")
	// ErrOpen is returned when a sealed value was made with a different
	// secret, for a different purpose, or was modified in transit.
	ErrOpen = errors.New("cannot open sealed value: wrong room secret or corrupted data")
)

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// RoomBox seals and opens payloads under a key shared by everyone in a room.
type RoomBox struct {
	aead        cipher.AEAD
	fingerprint string
}

// NewRoomBox derives the room key from secret.
func NewRoomBox(secret string) (*RoomBox, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	N, r, p := scryptParamsDefault()
	key, err := scrypt.Key([]byte(secret), roomSalt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive room key: %w", err)
	}
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &RoomBox{aead: aead, fingerprint: fingerprint(key)}, nil
}

// Fingerprint identifies the derived key without revealing it.
func (b *RoomBox) Fingerprint() string { return b.fingerprint }

// Seal encrypts plaintext, binding it to ad, and returns base64(nonce||ct).
func (b *RoomBox) Seal(ad, plaintext []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize(), b.aead.NonceSize()+len(plaintext)+b.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return B64(b.aead.Seal(nonce, nonce, plaintext, ad)), nil
}

// Open reverses Seal.
func (b *RoomBox) Open(ad []byte, sealed string) ([]byte, error) {
	raw, err := UnB64(sealed)
	if err != nil {
		return nil, ErrOpen
	}
	ns := b.aead.NonceSize()
	if len(raw) < ns+b.aead.Overhead() {
		return nil, ErrOpen
	}
	pt, err := b.aead.Open(nil, raw[:ns], raw[ns:], ad)
	if err != nil {
		return nil, ErrOpen
	}
	return pt, nil
}

// fingerprint is the first 10 bytes of SHA-256(key), hex encoded.
func fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:10])
}

//go:noinline
func wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(&b)
}
