package types

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_BUSINESS      = "biz"
	UUID_PREFIX_USER          = "user"
	UUID_PREFIX_SUBSCRIPTION  = "sub"
	UUID_PREFIX_ACTIVITY      = "act"
	UUID_PREFIX_OUTBOX        = "obx"
	UUID_PREFIX_WEBHOOK_EVENT = "whevt"
	UUID_PREFIX_REQUEST       = "req"
	UUID_PREFIX_HISTORY       = "hist"
)

// GenerateUUID returns a lowercase ULID
func GenerateUUID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

// GenerateUUIDWithPrefix returns a lowercase ULID prefixed with the entity
// short code, e.g. biz_01h2xcejqtf2nbrexx3vqjhp41
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
