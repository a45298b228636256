package visitor

import "errors"

// ErrMaxIterExceeded is returned by Next when WithMaxIter's bound is hit
// before the queue drains.
var ErrMaxIterExceeded = errors.New("visitor: max instantiation count exceeded")
