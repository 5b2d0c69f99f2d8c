package models

import "time"

// Vote is immutable once cast. The composite unique index on (voter_id,
// position_id) is what guarantees one vote per voter per position.
// The composite foreign key on (candidate_id, position_id) pins the candidate
// to that position: a candidate with votes cannot change position, and a vote
// cannot reference a candidate outside its position.
type Vote struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	VoterID     uint      `json:"voter_id" gorm:"not null;uniqueIndex:idx_vote_voter_position"`
	PositionID  uint      `json:"position_id" gorm:"not null;uniqueIndex:idx_vote_voter_position;index"`
	CandidateID uint      `json:"candidate_id" gorm:"not null;index"`
	Timestamp   time.Time `json:"timestamp" gorm:"column:voted_at;not null;autoCreateTime;index"`

	Voter     *User      `json:"voter,omitempty" gorm:"foreignKey:VoterID;constraint:OnDelete:CASCADE"`
	Position  *Position  `json:"position,omitempty" gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE"`
	Candidate *Candidate `json:"candidate,omitempty" gorm:"foreignKey:CandidateID,PositionID;references:ID,PositionID;constraint:OnUpdate:NO ACTION,OnDelete:CASCADE"`
}

func (Vote) TableName() string {
	return "votes"
}

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Election{},
		&Position{},
		&Candidate{},
		&Vote{},
		&ResultSnapshot{},
	}
}
