// Package persistence stores the outcome of a device registration on disk.
//
// The record is JSON. A Store created with a Sealer encrypts the record at
// rest with XChaCha20-Poly1305 under a key derived from a device secret with
// HKDF-SHA256; Load detects sealed files and opens them.
package persistence
