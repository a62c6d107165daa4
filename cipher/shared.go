package cipher

import "go.nostrconnect.dev/core/signer"

// SharedX computes the 32-byte x-only ECDH shared secret between a local
// signer's secret key and a peer's x-only public key. The keys Encrypt44
// and Encrypt04 take are derived from this value (GenerateConversationKey
// and SharedSecretKey respectively).
func SharedX(s signer.I, peerPub []byte) ([]byte, error) {
	return s.ECDH(peerPub)
}
