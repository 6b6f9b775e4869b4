package backend

import (
	"context"
	"net/http"

	"github.com/spec-kit/forum-service/internal/domain"
)

// GetQuestion fetches a single question.
func (c *Client) GetQuestion(ctx context.Context, token, questionID string) (*domain.Question, error) {
	var question domain.Question
	err := c.do(ctx, call{op: "get_question", method: http.MethodGet, path: path("/questions/%s", questionID), token: token}, &question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ListAnswers returns every answer of a question, in backend order. Filtering
// for the viewer happens on our side.
func (c *Client) ListAnswers(ctx context.Context, token, questionID string) ([]domain.Answer, error) {
	var answers []domain.Answer
	err := c.do(ctx, call{op: "list_answers", method: http.MethodGet, path: path("/questions/%s/answers", questionID), token: token}, &answers)
	return answers, err
}

// ListComments returns the flat comment list of a question.
func (c *Client) ListComments(ctx context.Context, token, questionID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := c.do(ctx, call{op: "list_comments", method: http.MethodGet, path: path("/questions/%s/comments", questionID), token: token}, &comments)
	return comments, err
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, token, questionID string) error {
	return c.do(ctx, call{op: "delete_question", method: http.MethodDelete, path: path("/questions/%s", questionID), token: token}, nil)
}

// AcceptAnswer marks an answer as the accepted one.
func (c *Client) AcceptAnswer(ctx context.Context, token, questionID, answerID string) error {
	body := map[string]string{"answerId": answerID}
	return c.do(ctx, call{op: "accept_answer", method: http.MethodPost, path: path("/questions/%s/accept", questionID), token: token, body: body}, nil)
}

// LikeQuestion toggles the viewer's like on a question and returns the new count.
func (c *Client) LikeQuestion(ctx context.Context, token, questionID string) (int, error) {
	var result struct {
		Likes int `json:"likes"`
	}
	err := c.do(ctx, call{op: "like_question", method: http.MethodPost, path: path("/questions/%s/like", questionID), token: token}, &result)
	return result.Likes, err
}

// ReportQuestion files an abuse report.
func (c *Client) ReportQuestion(ctx context.Context, token, questionID, reason string) error {
	body := map[string]string{"reason": reason}
	return c.do(ctx, call{op: "report_question", method: http.MethodPost, path: path("/questions/%s/report", questionID), token: token, body: body}, nil)
}

// CreateAnswer posts a new answer.
func (c *Client) CreateAnswer(ctx context.Context, token, questionID, content string) (*domain.Answer, error) {
	var answer domain.Answer
	body := map[string]string{"body": content}
	err := c.do(ctx, call{op: "create_answer", method: http.MethodPost, path: path("/questions/%s/answers", questionID), token: token, body: body}, &answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// GetAnswer fetches a single answer.
func (c *Client) GetAnswer(ctx context.Context, token, answerID string) (*domain.Answer, error) {
	var answer domain.Answer
	err := c.do(ctx, call{op: "get_answer", method: http.MethodGet, path: path("/answers/%s", answerID), token: token}, &answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// UpdateAnswer replaces an answer's content.
func (c *Client) UpdateAnswer(ctx context.Context, token, answerID, content string) (*domain.Answer, error) {
	var answer domain.Answer
	body := map[string]string{"body": content}
	err := c.do(ctx, call{op: "update_answer", method: http.MethodPatch, path: path("/answers/%s", answerID), token: token, body: body}, &answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// DeleteAnswer removes an answer.
func (c *Client) DeleteAnswer(ctx context.Context, token, answerID string) error {
	return c.do(ctx, call{op: "delete_answer", method: http.MethodDelete, path: path("/answers/%s", answerID), token: token}, nil)
}

// ModerateAnswer approves or rejects an answer.
func (c *Client) ModerateAnswer(ctx context.Context, token, answerID string, approve bool) (*domain.Answer, error) {
	var answer domain.Answer
	body := map[string]bool{"isApproved": approve}
	err := c.do(ctx, call{op: "moderate_answer", method: http.MethodPatch, path: path("/answers/%s/moderation", answerID), token: token, body: body}, &answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// CreateComment posts a comment, optionally as a reply to parentID.
func (c *Client) CreateComment(ctx context.Context, token, questionID, content string, parentID *string) (*domain.Comment, error) {
	var comment domain.Comment
	body := struct {
		Body     string  `json:"body"`
		ParentID *string `json:"parentComment,omitempty"`
	}{Body: content, ParentID: parentID}
	err := c.do(ctx, call{op: "create_comment", method: http.MethodPost, path: path("/questions/%s/comments", questionID), token: token, body: body}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, token, commentID string) error {
	return c.do(ctx, call{op: "delete_comment", method: http.MethodDelete, path: path("/comments/%s", commentID), token: token}, nil)
}
