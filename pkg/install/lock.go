package install

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/matzehuels/stackpkg/pkg/errors"
)

// LockFile is the name of the lock file inside the install directory.
const LockFile = ".stackpkg.lock"

// DefaultLockTimeout bounds how long Lock waits for another process.
const DefaultLockTimeout = 30 * time.Second

const lockRetryDelay = 100 * time.Millisecond

// Lock takes an exclusive lock on dir and returns the function releasing it.
// It fails with ErrCodeLocked if the lock is not acquired within timeout.
func Lock(ctx context.Context, dir string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
	}
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fl := flock.New(filepath.Join(dir, LockFile))
	ok, err := fl.TryLockContext(lockCtx, lockRetryDelay)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil && lockCtx.Err() == nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "lock %s", dir)
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeLocked, "install directory %s is locked by another process", dir)
	}
	return func() { _ = fl.Unlock() }, nil
}
