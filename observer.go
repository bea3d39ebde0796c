package pollloop

import (
	"time"

	"github.com/wippyai/poll-loop/host"
)

// Round describes one completed readiness round: the pollables handed to
// the host, the ready indices it reported, the identities of the frames
// resumed as a result, and how long the poll blocked.
type Round struct {
	Resumed []string
	Polled  []host.Pollable
	Ready   []uint32
	Waited  time.Duration
	Seq     uint64
}
