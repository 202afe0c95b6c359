package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// NewSessionID builds a client-correlatable session token in the form
// "<epoch-ms>-<random-base36>".
func NewSessionID() string {
	ms := time.Now().UnixMilli()
	n, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back
		// to the timestamp alone rather than panic.
		return fmt.Sprintf("%d-0", ms)
	}
	return fmt.Sprintf("%d-%s", ms, strconv.FormatInt(n.Int64(), 36))
}
