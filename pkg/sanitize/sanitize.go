package sanitize

import (
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Policy names accepted by Lookup and Apply.
const (
	None   = ""
	Strict = "strict"
	UGC    = "ugc"
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy

	ugcOnce   sync.Once
	ugcPolicy *bluemonday.Policy
)

// Valid reports whether name is a known policy name. The empty name means no
// sanitising.
func Valid(name string) bool {
	switch normalize(name) {
	case None, Strict, UGC:
		return true
	default:
		return false
	}
}

// Lookup returns the shared bluemonday policy for name. It returns nil, nil
// for the empty name.
func Lookup(name string) (*bluemonday.Policy, error) {
	switch normalize(name) {
	case None:
		return nil, nil
	case Strict:
		return strictSanitizer(), nil
	case UGC:
		return ugcSanitizer(), nil
	default:
		return nil, fmt.Errorf("sanitize: unknown policy %q", name)
	}
}

// Apply runs markup through the named policy.
func Apply(name, markup string) (string, error) {
	policy, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if policy == nil {
		return markup, nil
	}
	return policy.Sanitize(markup), nil
}

func strictSanitizer() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

func ugcSanitizer() *bluemonday.Policy {
	ugcOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowDataAttributes()
		ugcPolicy = policy
	})
	return ugcPolicy
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
