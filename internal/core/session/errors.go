package session

import "errors"

var (
	ErrNotReplay   = errors.New("playback control is only available in replay mode")
	ErrNotRealTime = errors.New("input is only accepted in real-time mode")
	ErrNoAuction   = errors.New("the pricing rule does not take bids")
	ErrNoTank      = errors.New("the controlled tank has not been created yet")
)
