package db

import "errors"

var ErrNotConnected = errors.New("not connected")
