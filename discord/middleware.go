package discord

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
)

// Signature headers set by Discord on every interaction request.
const (
	SignatureHeader = "X-Signature-Ed25519"
	TimestampHeader = "X-Signature-Timestamp"
)

// VerifySignature wraps next with Discord's Ed25519 request validation:
// the signature must cover timestamp||body. Requests that fail
// verification get 401; a missing or malformed signature header or an
// unreadable body gets 500. The body is rebuffered for the wrapped
// handler.
func VerifySignature(publicKeyHex string, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		publicKey, err := hex.DecodeString(publicKeyHex)
		if err != nil || len(publicKey) != ed25519.PublicKeySize {
			logger.Error("application public key is not a valid hex-encoded Ed25519 key")
			http.Error(w, "invalid public key", http.StatusInternalServerError)
			return
		}

		signatureHex := r.Header.Get(SignatureHeader)
		timestamp := r.Header.Get(TimestampHeader)
		if signatureHex == "" || timestamp == "" {
			logger.Error("interaction request missing signature headers")
			http.Error(w, "missing signature headers", http.StatusInternalServerError)
			return
		}

		signature, err := hex.DecodeString(signatureHex)
		if err != nil {
			logger.Error("signature header is not valid hex", "error", err)
			http.Error(w, "invalid signature encoding", http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("reading interaction body failed", "error", err)
			http.Error(w, "reading body failed", http.StatusInternalServerError)
			return
		}
		r.Body.Close()

		message := append([]byte(timestamp), body...)
		if !ed25519.Verify(publicKey, message, signature) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}
