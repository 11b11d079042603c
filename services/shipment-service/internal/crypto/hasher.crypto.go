//services/shipment-service/internal/crypto/hasher.crypto.go

package crypto

import "context"

// TokenHasher protects the admin bearer token. Only the encoded hash is
// configured; the plain token lives with the operator.
type TokenHasher interface {
	HashToken(ctx context.Context, token string) (string, error)
	VerifyToken(ctx context.Context, token, encodedHash string) (bool, error)
}
