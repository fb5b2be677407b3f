package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNewQuery(t *testing.T) {
	tests := []struct {
		name          string
		queries       []*Query
		lastSubmitted string
		want          bool
	}{
		{
			name:          "empty list",
			queries:       nil,
			lastSubmitted: "hello",
			want:          false,
		},
		{
			name:          "nothing submitted yet",
			queries:       []*Query{queryFixture("q1", "hello", "hi")},
			lastSubmitted: "",
			want:          false,
		},
		{
			name:          "completed outcome for the submitted message",
			queries:       []*Query{queryFixture("q1", "hello", "hi")},
			lastSubmitted: "hello",
			want:          true,
		},
		{
			name: "failed outcome counts as arrived",
			queries: []*Query{{
				ID:           "q1",
				Message:      "hello",
				Status:       QueryStatusFailed,
				ErrorMessage: "boom",
			}},
			lastSubmitted: "hello",
			want:          true,
		},
		{
			name: "pending placeholder is not new",
			queries: []*Query{{
				ID:      "q1",
				Message: "hello",
				Status:  QueryStatusPending,
			}},
			lastSubmitted: "hello",
			want:          false,
		},
		{
			name:          "outcome for a different message",
			queries:       []*Query{queryFixture("q1", "other", "hi")},
			lastSubmitted: "hello",
			want:          false,
		},
		{
			// The comparison is message-text based, so an older query with
			// identical text flags as new. Pinned as the accepted tradeoff.
			name: "identical earlier message mis-flags",
			queries: []*Query{
				queryFixture("q1", "hello", "first answer"),
			},
			lastSubmitted: "hello",
			want:          true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, IsNewQuery(test.queries, test.lastSubmitted))
		})
	}
}
