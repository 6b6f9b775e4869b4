package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(AnswerRequest{Body: "text"}))

	err := Check(AnswerRequest{})
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, map[string]any{"body": "required"}, domainErr.Details["fields"])
}

func TestCheckQueryNames(t *testing.T) {
	err := Check(ModerationLogQuery{TargetType: "POST", Limit: 500})
	domainErr := apperrors.ToDomainError(err)
	fields := domainErr.Details["fields"].(map[string]any)
	assert.Equal(t, "oneof", fields["targetType"])
	assert.Equal(t, "required_with", fields["targetId"])
	assert.Equal(t, "max", fields["limit"])

	assert.NoError(t, Check(ModerationLogQuery{}))
	assert.NoError(t, Check(UserListQuery{Page: 2, Limit: 20}))
}
