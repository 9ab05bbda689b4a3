// Package crypto exposes the minimal primitives used by rechat.
//
// Contents
//
//   - Room boxes: a shared room secret is stretched with scrypt into an
//     XChaCha20-Poly1305 key that seals message bodies and image data
//     (NewRoomBox, Seal, Open)
//   - Short key fingerprints for out-of-band comparison (RoomBox.Fingerprint)
//   - Base64 helpers for binary frame fields (B64, UnB64)
//
// # Notes
//
// The hub never holds the secret. It relays sealed strings untouched, so two
// peers only understand each other when they were started with the same
// secret. Compare fingerprints out of band to confirm.
package crypto
