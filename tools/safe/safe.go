package safe

import (
	"conecta/logger"
)

// Go starts a new goroutine that recovers from panic, so that panics
// don't crash the entire program.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe.Go] panic recovered: %v", r)
			}
		}()
		f()
	}()
}

// Recover is the deferred form, for goroutines the caller starts
// itself.
func Recover(scope string) {
	if r := recover(); r != nil {
		logger.Errorf("[%s] panic recovered: %v", scope, r)
	}
}
