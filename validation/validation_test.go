package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Join_Request_Collects_All_Violations(t *testing.T) {
	req := require.New(t)

	req.Nil(Check(JoinRequest{Name: "Ana"}))
	req.Equal([]string{"name is required"}, Check(JoinRequest{}))
	req.Equal([]string{"name must not be blank"}, Check(JoinRequest{Name: "   "}))
}

func Test_Send_Request_Collects_All_Violations(t *testing.T) {
	req := require.New(t)

	req.Nil(Check(SendRequest{To: "Todos", Text: "oi", Type: "message"}))
	req.Nil(Check(SendRequest{To: "Bob", Text: "oi", Type: "private_message"}))

	// All three rules broken: every violation is reported in one pass.
	violations := Check(SendRequest{})
	req.Len(violations, 3)
	req.Contains(violations, "to is required")
	req.Contains(violations, "text is required")
	req.Contains(violations, "type is required")

	violations = Check(SendRequest{To: "Bob", Text: "oi", Type: "status"})
	req.Equal([]string{"type must be one of [message private_message]"}, violations)
}

func Test_Fetch_Query_Limit(t *testing.T) {
	req := require.New(t)

	query, violations := ParseFetchQuery("")
	req.Nil(violations)
	req.Nil(query.Limit)

	query, violations = ParseFetchQuery("3")
	req.Nil(violations)
	req.Equal(3, *query.Limit)

	_, violations = ParseFetchQuery("x")
	req.Equal([]string{"limit must be a positive number"}, violations)

	_, violations = ParseFetchQuery("-1")
	req.Equal([]string{"limit must be greater than 0"}, violations)

	_, violations = ParseFetchQuery("0")
	req.Equal([]string{"limit must be greater than 0"}, violations)
}
