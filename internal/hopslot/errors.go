package hopslot

import "errors"

// ErrTooManyResizes signals that the rehash driver, within one Put call,
// doubled capacity MaxResizeAttempts times without finding a layout that
// fits every entry (and the new key) in its neighborhood. The table keeps
// the array it had before that Put call when this is returned.
var ErrTooManyResizes = errors.New("hopscotch: too many resize attempts")
