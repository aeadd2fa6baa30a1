package internal

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewChatID generates a session id of the form chat-<unix ms>-<9 base36 chars>
func NewChatID() string {
	return fmt.Sprintf("chat-%d-%s", time.Now().UnixMilli(), randomBase36(9))
}

// newMessageID returns a prefixed id that is never reused within a session
func newMessageID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

func randomBase36(n int) string {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			buf[i] = base36[time.Now().UnixNano()%int64(len(base36))]
			continue
		}
		buf[i] = base36[idx.Int64()]
	}
	return string(buf)
}
