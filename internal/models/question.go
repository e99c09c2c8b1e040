package models

import (
	"time"
)

type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionApproved QuestionStatus = "approved"
	QuestionRejected QuestionStatus = "rejected"
)

func (s QuestionStatus) IsValid() bool {
	switch s {
	case QuestionPending, QuestionApproved, QuestionRejected:
		return true
	default:
		return false
	}
}

type Question struct {
	ID           string `json:"_id" gorm:"primaryKey;size:64" bson:"_id"`
	QuestionText string `json:"questionText" gorm:"type:text;not null" bson:"questionText"`

	// CreatedBy holds the author's user id; Creator is the expanded author filled on read.
	CreatedBy *string         `json:"-" gorm:"size:64;index" bson:"createdBy,omitempty"`
	Creator   *QuestionAuthor `json:"createdBy" gorm:"-" bson:"-"`

	AISuggestedAnswer *string        `json:"aiSuggestedAnswer" gorm:"type:text" bson:"aiSuggestedAnswer,omitempty"`
	FinalAnswer       *string        `json:"finalAnswer" gorm:"type:text" bson:"finalAnswer,omitempty"`
	Status            QuestionStatus `json:"status" gorm:"not null;size:20;default:pending;index" bson:"status"`

	CreatedAt time.Time `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionAuthor is the public projection of a question's author.
type QuestionAuthor struct {
	ID   string   `json:"_id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

// AttachAuthors fills Creator on each question from the given users. Questions whose
// author no longer exists keep a nil Creator.
func AttachAuthors(questions []*Question, users []*User) {
	byID := make(map[string]*User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, q := range questions {
		if q.CreatedBy == nil {
			continue
		}
		if u, ok := byID[*q.CreatedBy]; ok {
			q.Creator = &QuestionAuthor{ID: u.ID, Name: u.Name, Role: u.Role}
		}
	}
}

// AuthorIDs returns the distinct author ids referenced by questions.
func AuthorIDs(questions []*Question) []string {
	seen := make(map[string]struct{}, len(questions))
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		if q.CreatedBy == nil {
			continue
		}
		if _, ok := seen[*q.CreatedBy]; ok {
			continue
		}
		seen[*q.CreatedBy] = struct{}{}
		ids = append(ids, *q.CreatedBy)
	}
	return ids
}

// QuestionStatusCounts is the aggregate used by the dashboard.
type QuestionStatusCounts struct {
	Total    int64 `json:"total" bson:"total"`
	Approved int64 `json:"approved" bson:"approved"`
	Rejected int64 `json:"rejected" bson:"rejected"`
	Pending  int64 `json:"pending" bson:"pending"`
}
