package tx

import "errors"

var (
	// ErrInvalidOutput indicates a payment output without address or below dust.
	ErrInvalidOutput = errors.New("tx: invalid payment output")

	// ErrInvalidAmount indicates an amount string that cannot be converted to satoshis.
	ErrInvalidAmount = errors.New("tx: invalid amount")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")
)
