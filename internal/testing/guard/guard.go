// Package guard switches the process into test mode when imported, so mains
// return before touching redis, the billing API or Gotenberg.
package guard

import "os"

var defaults = map[string]string{
	"BILLDASH_TEST_MODE": "1",
	"UPSTREAM_BASE_URL":  "http://127.0.0.1:0",
	"GOTENBERG_URL":      "http://127.0.0.1:0",
}

func init() {
	for key, value := range defaults {
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
