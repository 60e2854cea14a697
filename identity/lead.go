package identity

import (
	"crypto/md5"
	"encoding/hex"
)

// LeadID computes the deduplication fingerprint for a lead. It is a pure
// function of phone, address and the extraction calendar date: the same
// listing seen twice on one day collapses to one id, and the same listing
// seen tomorrow gets a fresh one (daily-lead semantics).
func LeadID(phone, address, date string) string {
	sum := md5.Sum([]byte(phone + "|" + address + "|" + date))
	return hex.EncodeToString(sum[:])
}
