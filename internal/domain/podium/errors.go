package podium

import "errors"

// Sentinel error kinds for podium analysis.
var (
	ErrUndeterminedPlayerCount = errors.New("undetermined player count")
)
