// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package facts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/pdiddy/transparency-engine/pkg/types"
)

// fingerprintLen is the number of hex characters kept from the hash. Short
// enough to read in logs, long enough that accidental collisions are not a
// practical concern.
const fingerprintLen = 16

// fingerprintFields is the serialized subset, with keys in sorted order so
// the hash is stable. Absent fields are omitted entirely, matching the
// semantics of a sparse source record.
type fingerprintFields struct {
	Description string   `json:"beschreibung,omitempty"`
	Amount      *float64 `json:"betrag,omitempty"`
	Year        *int     `json:"jahr,omitempty"`
	Category    string   `json:"kategorie,omitempty"`
}

// Fingerprint derives the content fingerprint of a record: a truncated
// SHA-256 over the stable serialization of the year, category, description,
// and amount fields (prd005-facts R1.1, R1.2).
//
// Fields outside this subset do not participate, so records differing only
// in metadata collapse to the same fingerprint. Two semantically different
// records that agree on the subset therefore also collide; that is an
// accepted limitation of content addressing on a fixed subset, not a defect
// (R1.3).
func Fingerprint(rec types.Record) string {
	data, _ := json.Marshal(fingerprintFields{
		Description: rec.Description,
		Amount:      rec.Amount,
		Year:        rec.Year,
		Category:    rec.Category,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
