// Package ledger is the authoritative poll state machine. Every mutating
// entry point validates all preconditions up front, then commits in full
// under a single writer lock; readers never observe a half-applied
// operation. Poll ids are global and sequential from 1, contestant ids are
// sequential from 1 within their poll, and neither is ever reused.
package ledger

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ballot-labs/dappvotes/src/api/types"
)

// Poll lifecycle status derived from the clock, never stored.
const (
	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusEnded    = "ended"
)

type Config struct {
	// LockUpdateAfterVotes rejects updatePoll once the poll has votes,
	// mirroring the deletion rule.
	LockUpdateAfterVotes bool
	// EnforceVoteWindow rejects votes outside [startsAt, endsAt].
	EnforceVoteWindow bool

	Persist Persister
	Events  Publisher

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

type Ledger struct {
	mu  sync.RWMutex
	cfg Config
	now func() time.Time

	polls       []*types.Poll // index id-1; tombstoned polls stay in place
	contestants map[uint64][]*types.Contestant
	contested   map[uint64]map[string]bool
	voted       map[uint64]map[string]bool

	voters      []*types.Voter
	voterByAddr map[string]*types.Voter
	voterByHash map[string]*types.Voter
}

func New(cfg Config) *Ledger {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		cfg:         cfg,
		now:         now,
		contestants: make(map[uint64][]*types.Contestant),
		contested:   make(map[uint64]map[string]bool),
		voted:       make(map[uint64]map[string]bool),
		voterByAddr: make(map[string]*types.Voter),
		voterByHash: make(map[string]*types.Voter),
	}
}

// Hydrate rebuilds in-memory state from persisted rows. Call once, before
// the ledger starts serving.
func (l *Ledger) Hydrate(polls []types.Poll, contestants []types.Contestant,
	votes []types.PollVote, entries []types.PollEntry, voters []types.Voter) {

	l.mu.Lock()
	defer l.mu.Unlock()

	l.polls = make([]*types.Poll, len(polls))
	for i := range polls {
		p := polls[i]
		l.polls[p.ID-1] = &p
	}
	for i := range contestants {
		c := contestants[i]
		l.contestants[c.PollID] = append(l.contestants[c.PollID], &c)
	}
	for _, v := range votes {
		l.membership(l.voted, v.PollID)[v.Address] = true
	}
	for _, e := range entries {
		l.membership(l.contested, e.PollID)[e.Address] = true
	}
	for i := range voters {
		v := voters[i]
		l.voters = append(l.voters, &v)
		l.voterByAddr[v.Address] = &v
		l.voterByHash[v.Fingerprint] = &v
	}
}

func (l *Ledger) membership(m map[uint64]map[string]bool, pollID uint64) map[string]bool {
	set, ok := m[pollID]
	if !ok {
		set = make(map[string]bool)
		m[pollID] = set
	}
	return set
}

type PollParams struct {
	Image       string
	Title       string
	Description string
	StartsAt    int64
	EndsAt      int64
}

func validatePollParams(p PollParams, now time.Time) error {
	if p.Image == "" {
		return validation("image cannot be empty")
	}
	if p.Title == "" {
		return validation("title cannot be empty")
	}
	if p.Description == "" {
		return validation("description cannot be empty")
	}
	if p.StartsAt <= now.Unix() {
		return validation("start time must be in the future")
	}
	if p.EndsAt <= p.StartsAt {
		return validation("end time must be after start time")
	}
	return nil
}

// CreatePoll allocates the next poll id and stores a new poll directed by
// caller.
func (l *Ledger) CreatePoll(caller string, params PollParams) (types.Poll, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if err := validatePollParams(params, now); err != nil {
		return types.Poll{}, err
	}

	p := &types.Poll{
		ID:          uint64(len(l.polls)) + 1,
		Image:       params.Image,
		Title:       params.Title,
		Description: params.Description,
		Director:    caller,
		StartsAt:    params.StartsAt,
		EndsAt:      params.EndsAt,
		CreatedAt:   now,
	}
	l.polls = append(l.polls, p)

	l.savePoll(p)
	l.emit(EventPollCreated, map[string]any{
		"pollId":   p.ID,
		"director": p.Director,
		"title":    p.Title,
	})
	return *p, nil
}

// UpdatePoll overwrites the mutable fields of a poll. Id, director,
// createdAt, counters and the tombstone are untouched.
func (l *Ledger) UpdatePoll(caller string, pollID uint64, params PollParams) (types.Poll, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.activePoll(pollID)
	if err != nil {
		return types.Poll{}, err
	}
	if p.Director != caller {
		return types.Poll{}, authorization("only the poll director can perform this action")
	}
	if l.cfg.LockUpdateAfterVotes && p.VoteCount > 0 {
		return types.Poll{}, conflict("cannot update a poll with votes")
	}
	if err := validatePollParams(params, l.now()); err != nil {
		return types.Poll{}, err
	}

	p.Image = params.Image
	p.Title = params.Title
	p.Description = params.Description
	p.StartsAt = params.StartsAt
	p.EndsAt = params.EndsAt

	l.savePoll(p)
	l.emit(EventPollUpdated, map[string]any{
		"pollId": p.ID,
		"title":  p.Title,
	})
	return *p, nil
}

// DeletePoll tombstones a poll. The poll and its contestants stay stored
// and readable by id; only the active listing excludes them. Irreversible.
func (l *Ledger) DeletePoll(caller string, pollID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.activePoll(pollID)
	if err != nil {
		return err
	}
	if p.Director != caller {
		return authorization("only the poll director can perform this action")
	}
	if p.VoteCount > 0 {
		return conflict("cannot delete a poll with votes")
	}

	p.Deleted = true

	l.savePoll(p)
	l.emit(EventPollDeleted, map[string]any{"pollId": p.ID})
	return nil
}

// Contest registers the caller as a contestant in a poll. One entry per
// address per poll.
func (l *Ledger) Contest(caller string, pollID uint64, name, image string) (types.Contestant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.activePoll(pollID)
	if err != nil {
		return types.Contestant{}, err
	}
	if name == "" {
		return types.Contestant{}, validation("name cannot be empty")
	}
	if l.contested[pollID][caller] {
		return types.Contestant{}, conflict("already contested in this poll")
	}

	c := &types.Contestant{
		PollID:    pollID,
		ID:        uint64(len(l.contestants[pollID])) + 1,
		Name:      name,
		Image:     image,
		Account:   caller,
		CreatedAt: l.now(),
	}
	l.contestants[pollID] = append(l.contestants[pollID], c)
	p.ContestantCount++
	l.membership(l.contested, pollID)[caller] = true

	l.saveContestant(c)
	l.savePoll(p)
	l.saveEntry(&types.PollEntry{PollID: pollID, Address: caller, CreatedAt: c.CreatedAt})
	l.emit(EventContestantAdded, map[string]any{
		"pollId":       pollID,
		"contestantId": c.ID,
		"account":      c.Account,
		"name":         c.Name,
	})
	return *c, nil
}

// Vote records the caller's single vote in a poll for one contestant.
func (l *Ledger) Vote(caller string, pollID, contestantID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.activePoll(pollID)
	if err != nil {
		return err
	}
	list := l.contestants[pollID]
	if contestantID == 0 || contestantID > uint64(len(list)) {
		return notFound("invalid contestant")
	}
	if l.voted[pollID][caller] {
		return conflict("you have already voted in this poll")
	}
	now := l.now()
	if l.cfg.EnforceVoteWindow && statusAt(p, now) != StatusActive {
		return validation("voting is not active")
	}

	c := list[contestantID-1]
	c.Votes++
	p.VoteCount++
	l.membership(l.voted, pollID)[caller] = true

	l.saveContestant(c)
	l.savePoll(p)
	l.saveVote(&types.PollVote{PollID: pollID, Address: caller, CreatedAt: now})
	l.emit(EventVoteCast, map[string]any{
		"pollId":       pollID,
		"contestantId": contestantID,
		"voter":        caller,
	})
	return nil
}

// RegisterVoter binds an address to a fingerprint digest. Optional
// extension; casting votes does not require enrollment.
func (l *Ledger) RegisterVoter(addr, name, fingerprint string) (types.Voter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if name == "" {
		return types.Voter{}, validation("name cannot be empty")
	}
	if fingerprint == "" {
		return types.Voter{}, validation("fingerprint cannot be empty")
	}
	if l.voterByAddr[addr] != nil {
		return types.Voter{}, conflict("address already enrolled")
	}
	if l.voterByHash[fingerprint] != nil {
		return types.Voter{}, conflict("fingerprint already registered")
	}

	v := &types.Voter{
		ID:          uint64(len(l.voters)) + 1,
		Address:     addr,
		Name:        name,
		Fingerprint: fingerprint,
		CreatedAt:   l.now(),
	}
	l.voters = append(l.voters, v)
	l.voterByAddr[addr] = v
	l.voterByHash[fingerprint] = v

	l.saveVoter(v)
	l.emit(EventVoterRegistered, map[string]any{
		"address":     v.Address,
		"voterId":     v.ID,
		"name":        v.Name,
		"fingerprint": v.Fingerprint,
	})
	return *v, nil
}

// Poll returns a poll by id, tombstoned or not.
func (l *Ledger) Poll(pollID uint64) (types.Poll, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, err := l.poll(pollID)
	if err != nil {
		return types.Poll{}, err
	}
	return *p, nil
}

// Polls returns all non-deleted polls in creation order.
func (l *Ledger) Polls() []types.Poll {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Poll, 0, len(l.polls))
	for _, p := range l.polls {
		if !p.Deleted {
			out = append(out, *p)
		}
	}
	return out
}

// PollCount returns the number of polls ever created, tombstones included.
func (l *Ledger) PollCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.polls))
}

func (l *Ledger) Contestant(pollID, contestantID uint64) (types.Contestant, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := l.poll(pollID); err != nil {
		return types.Contestant{}, err
	}
	list := l.contestants[pollID]
	if contestantID == 0 || contestantID > uint64(len(list)) {
		return types.Contestant{}, notFound("invalid contestant")
	}
	return *list[contestantID-1], nil
}

// Contestants returns a poll's contestants in registration order.
func (l *Ledger) Contestants(pollID uint64) ([]types.Contestant, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := l.poll(pollID); err != nil {
		return nil, err
	}
	list := l.contestants[pollID]
	out := make([]types.Contestant, len(list))
	for i, c := range list {
		out[i] = *c
	}
	return out, nil
}

func (l *Ledger) HasVoted(pollID uint64, addr string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.voted[pollID][addr]
}

func (l *Ledger) HasContested(pollID uint64, addr string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.contested[pollID][addr]
}

// PollStatus derives the lifecycle status from the clock. No stored field.
func (l *Ledger) PollStatus(pollID uint64) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, err := l.poll(pollID)
	if err != nil {
		return "", err
	}
	return statusAt(p, l.now()), nil
}

func statusAt(p *types.Poll, now time.Time) string {
	ts := now.Unix()
	switch {
	case ts < p.StartsAt:
		return StatusUpcoming
	case ts <= p.EndsAt:
		return StatusActive
	default:
		return StatusEnded
	}
}

func (l *Ledger) poll(pollID uint64) (*types.Poll, error) {
	if pollID == 0 || pollID > uint64(len(l.polls)) {
		return nil, notFound("poll does not exist")
	}
	return l.polls[pollID-1], nil
}

func (l *Ledger) activePoll(pollID uint64) (*types.Poll, error) {
	p, err := l.poll(pollID)
	if err != nil {
		return nil, err
	}
	if p.Deleted {
		return nil, notFound("poll does not exist")
	}
	return p, nil
}

func (l *Ledger) emit(event string, fields map[string]any) {
	if l.cfg.Events == nil {
		return
	}
	if err := l.cfg.Events.Publish(context.Background(), event, fields); err != nil {
		log.Printf("publish %s: %v", event, err)
	}
}

func (l *Ledger) savePoll(p *types.Poll) {
	if l.cfg.Persist == nil {
		return
	}
	if err := l.cfg.Persist.SavePoll(p); err != nil {
		log.Printf("persist poll %d: %v", p.ID, err)
	}
}

func (l *Ledger) saveContestant(c *types.Contestant) {
	if l.cfg.Persist == nil {
		return
	}
	if err := l.cfg.Persist.SaveContestant(c); err != nil {
		log.Printf("persist contestant %d/%d: %v", c.PollID, c.ID, err)
	}
}

func (l *Ledger) saveVote(v *types.PollVote) {
	if l.cfg.Persist == nil {
		return
	}
	if err := l.cfg.Persist.SaveVote(v); err != nil {
		log.Printf("persist vote %d/%s: %v", v.PollID, v.Address, err)
	}
}

func (l *Ledger) saveEntry(e *types.PollEntry) {
	if l.cfg.Persist == nil {
		return
	}
	if err := l.cfg.Persist.SaveEntry(e); err != nil {
		log.Printf("persist entry %d/%s: %v", e.PollID, e.Address, err)
	}
}

func (l *Ledger) saveVoter(v *types.Voter) {
	if l.cfg.Persist == nil {
		return
	}
	if err := l.cfg.Persist.SaveVoter(v); err != nil {
		log.Printf("persist voter %s: %v", v.Address, err)
	}
}
