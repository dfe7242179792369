package ledger

import (
	"context"

	"github.com/ballot-labs/dappvotes/src/api/types"
)

// Event names as external consumers know them.
const (
	EventPollCreated     = "PollCreated"
	EventPollUpdated     = "PollUpdated"
	EventPollDeleted     = "PollDeleted"
	EventContestantAdded = "ContestantAdded"
	EventVoteCast        = "VoteCast"
	EventVoterRegistered = "VoterRegistered"
)

// Publisher delivers one event per committed mutation. Delivery is
// best-effort; the ledger state is authoritative regardless.
type Publisher interface {
	Publish(ctx context.Context, event string, fields map[string]any) error
}

// Persister mirrors committed ledger state into durable storage so the
// ledger can be rehydrated on restart.
type Persister interface {
	SavePoll(p *types.Poll) error
	SaveContestant(c *types.Contestant) error
	SaveVote(v *types.PollVote) error
	SaveEntry(e *types.PollEntry) error
	SaveVoter(v *types.Voter) error
}
