package nibarchive

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/wippyai/nib-archive/nib"
)

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CanonicalDigest returns the digest of a's canonical encoding. Two
// archives with the same tables and trailing bytes share it regardless of
// how their files were laid out.
func CanonicalDigest(a *nib.Archive) (string, error) {
	data, err := a.Encode()
	if err != nil {
		return "", err
	}
	return Digest(data), nil
}
