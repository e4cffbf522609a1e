package bus

import (
	"fmt"
	"log"
	"time"
)

// discoveryTimeout bounds the probe of each candidate resource. Kept short so
// scanning a bus with absent devices stays tolerable.
const discoveryTimeout = 2 * time.Second

// discover probes every enumerable resource and returns a transport to the
// first device whose identity matches. The returned transport is reopened
// with the caller's timeout.
func discover(registry *Registry, match func(string) bool, timeout time.Duration) (Transport, Resource, string, error) {
	if match == nil {
		return nil, Resource{}, "", fmt.Errorf("%w: auto-discovery requires an identity matcher", ErrNoDevice)
	}

	for _, res := range registry.Enumerate() {
		tr, err := registry.Open(res, discoveryTimeout)
		if err != nil {
			continue
		}

		idn, err := queryIdentity(tr)
		if err != nil || !match(idn) {
			tr.Close() //nolint:errcheck
			continue
		}

		log.Printf("discovered %s at %s", idn, res)

		// Reopen with the configured timeout; the probe used a short one.
		tr.Close() //nolint:errcheck
		tr, err = registry.Open(res, timeout)
		if err != nil {
			continue
		}
		return tr, res, idn, nil
	}

	return nil, Resource{}, "", ErrNoDevice
}
