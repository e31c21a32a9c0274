package model

import "fmt"

// TxStatus is the stage of a bridge request in the downstream pipeline.
// Ingestion only sets it on insert.
type TxStatus int16

const (
	StatusTimedOut TxStatus = iota
	StatusNotCommitted
	StatusCommitmentSent
	StatusCommitted
	StatusRevealSent
	StatusRevealed
)

func (s TxStatus) String() string {
	switch s {
	case StatusTimedOut:
		return "timed_out"
	case StatusNotCommitted:
		return "not_committed"
	case StatusCommitmentSent:
		return "commitment_sent"
	case StatusCommitted:
		return "committed"
	case StatusRevealSent:
		return "reveal_sent"
	case StatusRevealed:
		return "revealed"
	default:
		return fmt.Sprintf("status(%d)", int16(s))
	}
}
