package idhash

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

// ComputeFightID computes a deterministic fight_id.
// Formula: base58(SHA256(date|fighter_a_id|fighter_b_id)), date as YYYY-MM-DD.
// Backslashes and pipes inside ids are backslash-escaped so distinct triples
// never share an input.
func ComputeFightID(date time.Time, fighterA, fighterB string) string {
	data := fmt.Sprintf("%s|%s|%s",
		date.UTC().Format("2006-01-02"),
		escaper.Replace(fighterA),
		escaper.Replace(fighterB),
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

var escaper = strings.NewReplacer(`\`, `\\`, "|", `\|`)
