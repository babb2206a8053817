package app

import (
	"os"
	"sync"
)

// Harness runs set TIENDAPOS_TEST_MODE=1 so the binaries exit before
// touching Postgres or Redis.
var inTestMode = sync.OnceValue(func() bool {
	return os.Getenv("TIENDAPOS_TEST_MODE") == "1"
})

// InTestMode reports whether startup side effects should be skipped.
func InTestMode() bool {
	return inTestMode()
}
