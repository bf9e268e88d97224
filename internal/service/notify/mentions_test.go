package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMentionNames(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "single mention",
			body: "thanks @jane_doe for the update",
			want: []string{"jane doe"},
		},
		{
			name: "multiple mentions",
			body: "@jane_doe and @bob please review",
			want: []string{"jane doe", "bob"},
		},
		{
			name: "duplicates collapse",
			body: "@bob @bob @Bob",
			want: []string{"bob"},
		},
		{
			name: "case folded",
			body: "ping @Jane_Doe",
			want: []string{"jane doe"},
		},
		{
			name: "no mentions",
			body: "nothing to see here",
			want: nil,
		},
		{
			name: "email address yields its domain token",
			body: "mail me at jane@example.com",
			want: []string{"example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMentionNames(tt.body))
		})
	}
}
