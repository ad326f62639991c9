package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Hi", rules[1].reply},
		{"How do I BOOK a slot?", rules[2].reply},
		{"I have chest pain and need an appointment", rules[0].reply},
		{"cancel please", rules[3].reply},
		{"what about my refund", rules[4].reply},
		{"", fallback},
		{"qwerty", fallback},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Reply(tt.message))
		})
	}
}
