package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/16 21:53
 * @file: ulid.go
 * @description: ulid
 */

var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

// GetUlid returns a lexically sortable id; ids generated within the same
// millisecond are strictly increasing.
func GetUlid() string {
	return GetUlidAt(time.Now())
}

// GetUlidAt returns a ulid stamped with t.
func GetUlidAt(t time.Time) string {
	ulidMu.Lock()
	defer ulidMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), ulidEntropy)
	if err != nil {
		return ""
	}
	return id.String()
}
