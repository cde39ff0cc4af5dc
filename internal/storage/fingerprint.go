// ABOUTME: Content fingerprinting for consolidated rows.
// ABOUTME: Digest over the canonical field tuple; the store-wide dedup key.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/nmoreno/salud/internal/models"
)

// Fingerprint returns a deterministic digest over the row's full field
// tuple. Every field is coerced to a canonical text form (ISO dates and
// timestamps, shortest float representation) with absent values encoded as
// null, so field-identical rows always fingerprint equal regardless of which
// run produced them.
func Fingerprint(row models.Row) string {
	date := row.Date.String()
	ts := row.Timestamp.Format(time.RFC3339)
	return digest([]*string{
		&date,
		&ts,
		floatText(row.MgDL),
		row.Tag,
		floatText(row.Steps),
		floatText(row.DistanceM),
		floatText(row.CaloriesKcal),
		floatText(row.ActiveMinutes),
	})
}

// digest hashes the ordered tuple as a JSON array (nil encodes as null).
func digest(values []*string) string {
	payload, err := json.Marshal(values)
	if err != nil {
		// []*string cannot fail to marshal.
		panic(err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func floatText(v *float64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatFloat(*v, 'g', -1, 64)
	return &s
}
