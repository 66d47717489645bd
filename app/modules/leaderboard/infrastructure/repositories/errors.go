package leaderboarddb

import "errors"

// ErrNotFound indicates the epoch row has not been written yet.
var ErrNotFound = errors.New("not found")
