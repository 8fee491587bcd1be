package anonymizer

import (
	"crypto/md5"
	"encoding/hex"
)

// HashValue returns the lowercase hex MD5 digest of value.
func HashValue(value string) string {
	sum := md5.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}
