// Package hash provides helpers for digesting and verifying secrets.
//
// Verification codes are never stored in plaintext: store only the digest,
// then verify user input by recomputing it. The HMAC implementation keys the
// digest with a server secret so a leaked table is not enough to forge codes.
package hash
