package domain

import "time"

// QuestionStatus is free-form; these values carry meaning for callers.
type QuestionStatus string

const (
	QuestionStatusPending  QuestionStatus = "pending"
	QuestionStatusAnswered QuestionStatus = "answered"
	QuestionStatusClosed   QuestionStatus = "closed"
)

// Question is a forum question owned by the backend store.
type Question struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Body             string         `json:"body"`
	Author           *UserRef       `json:"author,omitempty"`
	Status           QuestionStatus `json:"status"`
	Category         string         `json:"category"`
	AcceptedAnswerID *string        `json:"acceptedAnswerId,omitempty"`
	Likes            int            `json:"likes"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Answer is an expert reply to a question.
type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	Expert     *UserRef  `json:"expert,omitempty"`
	Body       string    `json:"body"`
	IsApproved bool      `json:"isApproved"`
	IsAccepted bool      `json:"isAccepted"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Comment is a threaded remark on a question.
type Comment struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	Author     *UserRef  `json:"author,omitempty"`
	ParentID   *string   `json:"parentComment,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// QuestionBundle is everything the backend returns for one question page.
type QuestionBundle struct {
	Question Question  `json:"question"`
	Answers  []Answer  `json:"answers"`
	Comments []Comment `json:"comments"`
}
