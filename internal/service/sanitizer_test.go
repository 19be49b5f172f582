package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Validate(t *testing.T) {
	s := NewSanitizer("mychannel")

	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{name: "empty text", text: "", valid: true},
		{name: "plain text", text: "Just a regular post", valid: true},
		{name: "http link", text: "check http://example.com now", valid: false},
		{name: "https link", text: "check https://example.com/page", valid: false},
		{name: "www link", text: "visit www.example.com", valid: false},
		{name: "foreign t.me link", text: "join t.me/otherchannel", valid: false},
		{name: "foreign t.me link with scheme", text: "join https://t.me/otherchannel/42", valid: false},
		{name: "self permalink", text: "see t.me/mychannel/15 for details", valid: true},
		{name: "self permalink with scheme", text: "see https://t.me/mychannel/15", valid: true},
		{name: "self permalink uppercase", text: "see T.me/MyChannel/15", valid: true},
		{name: "self channel link without message id", text: "find us at t.me/mychannel", valid: true},
		{name: "partial handle is foreign", text: "see t.me/mychannelextra/3", valid: false},
		{name: "self mention", text: "follow @mychannel for more", valid: true},
		{name: "self mention mixed case", text: "follow @MyChannel for more", valid: true},
		{name: "foreign mention", text: "thanks to @someoneelse", valid: false},
		{name: "foreign mention among self mentions", text: "@mychannel with @other", valid: false},
		{name: "self link and self mention together", text: "t.me/mychannel/7 via @mychannel", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, s.Validate(tt.text))
		})
	}
}

func TestSanitizer_Clean(t *testing.T) {
	s := NewSanitizer("mychannel")

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "empty text", text: "", expected: ""},
		{name: "plain text untouched", text: "Just a post", expected: "Just a post"},
		{name: "strips self mention", text: "Follow @mychannel today", expected: "Follow  today"},
		{name: "strips self mention case-insensitively", text: "Follow @MYCHANNEL", expected: "Follow"},
		{name: "strips self permalink", text: "More at t.me/mychannel/15", expected: "More at"},
		{name: "strips self permalink with scheme", text: "More at https://t.me/mychannel/15", expected: "More at"},
		{name: "keeps partial-handle mention", text: "ping @mychannelfans", expected: "ping @mychannelfans"},
		{name: "trims whitespace", text: "  @mychannel  ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Clean(tt.text))
		})
	}
}

func TestSanitizer_CleanIsIdempotent(t *testing.T) {
	s := NewSanitizer("mychannel")

	texts := []string{
		"",
		"Just a post",
		"Follow @mychannel and see t.me/mychannel/15",
		"  padded  ",
		"multi\nline @mychannel text",
	}

	for _, text := range texts {
		once := s.Clean(text)
		assert.Equal(t, once, s.Clean(once), "clean(clean(%q)) differs from clean(%q)", text, text)
	}
}
