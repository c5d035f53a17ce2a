package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// DefaultFingerprintQueryLimit is how many of a user's most recent free-text
// queries feed the fingerprint by default. The limit (like the whole
// fingerprint construction) is a staleness-policy knob, not a contract.
const DefaultFingerprintQueryLimit = 50

// Fingerprint summarizes a set of raw search query strings into a
// deterministic, order-independent hash. Two calls over the same set of
// queries, in any order and with any duplication, produce the same value, so
// comparing fingerprints detects whether the search history behind a cached
// snapshot has changed.
func Fingerprint(queries []string) string {
	seen := make(map[string]struct{}, len(queries))
	uniq := make([]string, 0, len(queries))

	for _, q := range queries {
		if _, ok := seen[q]; ok {
			continue
		}

		seen[q] = struct{}{}
		uniq = append(uniq, q)
	}

	sort.Strings(uniq)

	h := sha256.New()
	for _, q := range uniq {
		h.Write([]byte(q))
		h.Write([]byte{0}) // separator so ["ab"] != ["a","b"]
	}

	return hex.EncodeToString(h.Sum(nil))
}
