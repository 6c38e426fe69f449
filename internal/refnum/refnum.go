// Package refnum generates the human-readable order and booking references
// exposed to customers (ORD-..., SRV-..., RNT-..., RSA-...).
package refnum

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New builds a reference like ORD-1735689600123-4F9A21C7B. Uniqueness is
// enforced by the UNIQUE column; the uuid fragment makes collisions
// implausible in the first place.
func New(prefix string) string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), frag)
}
