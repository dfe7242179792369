package data

import (
	"log"

	"github.com/ballot-labs/dappvotes/src/api/types"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

// State is everything needed to rehydrate the ledger on boot.
type State struct {
	Polls       []types.Poll
	Contestants []types.Contestant
	Votes       []types.PollVote
	Entries     []types.PollEntry
	Voters      []types.Voter
}

func LoadState(db *gorm.DB) (State, error) {
	var s State
	if err := db.Order("id asc").Find(&s.Polls).Error; err != nil {
		return s, err
	}
	if err := db.Order("poll_id asc, id asc").Find(&s.Contestants).Error; err != nil {
		return s, err
	}
	if err := db.Find(&s.Votes).Error; err != nil {
		return s, err
	}
	if err := db.Find(&s.Entries).Error; err != nil {
		return s, err
	}
	if err := db.Order("id asc").Find(&s.Voters).Error; err != nil {
		return s, err
	}
	return s, nil
}

// Persister writes committed ledger records through to MySQL.
type Persister struct{ db *gorm.DB }

func NewPersister(db *gorm.DB) *Persister { return &Persister{db: db} }

func (p *Persister) SavePoll(poll *types.Poll) error {
	return p.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(poll).Error
}

func (p *Persister) SaveContestant(c *types.Contestant) error {
	return p.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error
}

func (p *Persister) SaveVote(v *types.PollVote) error {
	return p.db.Clauses(clause.OnConflict{DoNothing: true}).Create(v).Error
}

func (p *Persister) SaveEntry(e *types.PollEntry) error {
	return p.db.Clauses(clause.OnConflict{DoNothing: true}).Create(e).Error
}

func (p *Persister) SaveVoter(v *types.Voter) error {
	return p.db.Clauses(clause.OnConflict{DoNothing: true}).Create(v).Error
}
