package store

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Push keys sort lexicographically in creation order: 8 chars of millisecond
// timestamp followed by 12 random chars, incremented when two keys land in
// the same millisecond. Matches the key format of the hosted tree database.
const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

var pushMu sync.Mutex
var lastPushMs int64
var lastRand [12]int

// NewPushKey returns a 20-char chronologically ordered child key.
func NewPushKey() string {
	pushMu.Lock()
	defer pushMu.Unlock()

	now := time.Now().UnixMilli()
	if now == lastPushMs {
		// bump the random part so same-millisecond keys stay ordered
		for i := 11; i >= 0; i-- {
			lastRand[i]++
			if lastRand[i] < len(pushChars) {
				break
			}
			lastRand[i] = 0
		}
	} else {
		for i := range lastRand {
			lastRand[i] = rand.Intn(len(pushChars))
		}
	}
	lastPushMs = now

	var b strings.Builder
	b.Grow(20)
	ts := now
	var tsChars [8]byte
	for i := 7; i >= 0; i-- {
		tsChars[i] = pushChars[ts%64]
		ts /= 64
	}
	b.Write(tsChars[:])
	for _, r := range lastRand {
		b.WriteByte(pushChars[r])
	}
	return b.String()
}
