// internal/pkg/fingerprint/hash.go
package fingerprint

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ShortHashLen is the prefix length used for fast comparison.
const ShortHashLen = 8

// Digest pairs the folded hash with its fixed-length prefix.
type Digest struct {
	Hash      string `json:"hash"`
	ShortHash string `json:"short_hash"`
}

// Hash derives a deterministic digest from the fingerprint. The construction
// is a 32-bit rolling multiply-and-add over the stable-key-sorted JSON form,
// folded into a repeated hex string. Its state space is tiny and it is not
// collision-resistant; the backend treats it as advisory only.
func Hash(fp Fingerprint) Digest {
	var h int32
	for _, b := range []byte(stableJSON(fp)) {
		h = h*31 + int32(b)
	}

	word := fmt.Sprintf("%08x", uint32(h))
	full := strings.Repeat(word, 4)

	return Digest{
		Hash:      full,
		ShortHash: full[:ShortHashLen],
	}
}

// stableJSON renders the fingerprint with keys sorted, so field ordering can
// never change the digest. A map round-trip gives the sorted encoding.
func stableJSON(fp Fingerprint) string {
	raw, err := json.Marshal(fp)
	if err != nil {
		return ""
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return string(raw)
	}

	sorted, err := json.Marshal(m)
	if err != nil {
		return string(raw)
	}
	return string(sorted)
}
