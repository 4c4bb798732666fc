package captions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySingleScript(t *testing.T) {
	tests := []struct {
		text string
		want Script
	}{
		{"Hello world", Latin},
		{"", Latin},
		{"1234 !?", Latin},
		{"മലയാളം", Malayalam},
		{"नमस्ते दुनिया", Hindi},
		{"مرحبا بالعالم", Arabic},
		{"你好世界", Chinese},
		{"㐀㐁", Chinese},
		{"こんにちは", Japanese},
		{"カタカナ", Japanese},
		{"안녕하세요", Korean},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.text), tt.text)
	}
}

func TestClassifyMixedUsesPrecedence(t *testing.T) {
	tests := []struct {
		text string
		want Script
	}{
		{"Hello नमस्ते", Hindi},
		{"नमस्ते മലയാളം", Malayalam},
		{"안녕 مرحبا", Arabic},
		{"日本語のテキスト", Chinese},
		{"ひらがな 한국어", Japanese},
		{"Seoul 서울", Korean},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.text), tt.text)
	}
}
