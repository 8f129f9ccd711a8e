package importer

import (
	"encoding/json"
	"strings"

	"github.com/spendwise-dev/spendwise/internal/id"
	"github.com/spendwise-dev/spendwise/internal/model"
)

// fingerprintKey normalizes k and reports whether it is a row fingerprint.
func fingerprintKey(k string) (string, bool) {
	k = strings.ToLower(strings.TrimSpace(k))
	return k, id.IsFingerprint(k)
}

// ParseStringMap decodes a JSON object of fingerprint to string. Blank or
// malformed input yields an empty map; keys that are not fingerprints are
// dropped.
func ParseStringMap(s string) map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	var raw map[string]string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return out
	}
	for k, v := range raw {
		if k, ok := fingerprintKey(k); ok {
			out[k] = v
		}
	}
	return out
}

// ParseGroupMap decodes a JSON object of fingerprint to group name. Values
// are matched ignoring case and surrounding whitespace; unknown groups are
// dropped.
func ParseGroupMap(s string) map[string]model.Group {
	out := map[string]model.Group{}
	for k, v := range ParseStringMap(s) {
		if g, ok := model.ParseGroup(v); ok {
			out[k] = g
		}
	}
	return out
}

// ParseExcludeSet decodes a JSON array of fingerprints. Entries that are not
// fingerprints are dropped.
func ParseExcludeSet(s string) map[string]bool {
	out := map[string]bool{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	var arr []string
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return out
	}
	for _, h := range arr {
		if h, ok := fingerprintKey(h); ok {
			out[h] = true
		}
	}
	return out
}
