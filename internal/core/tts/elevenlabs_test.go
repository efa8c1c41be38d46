package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareTextForSpeechRedactsAddresses(t *testing.T) {
	in := "Funds moved from 0x4f2e8a1b9c3d to another account."
	out := PrepareTextForSpeech(in)
	assert.Equal(t, "Funds moved from this wallet address to another account.", out)
}

func TestPrepareTextForSpeechRedactsDigests(t *testing.T) {
	in := "See transaction 9WzSXdKxivjqqH6FQh2coV1YyBEvhJyyAxnSQEpMbmVT for details."
	out := PrepareTextForSpeech(in)
	assert.Equal(t, "See transaction transaction hash for details.", out)
}

func TestPrepareTextForSpeechReplacesCodeBlocks(t *testing.T) {
	in := "Here is the call:\n```\nmove_call(...)\n```\nDone."
	out := PrepareTextForSpeech(in)
	assert.Equal(t, "Here is the call:\ncode block\nDone.", out)
}

func TestPrepareTextForSpeechStripsMarkdown(t *testing.T) {
	in := "**Bold claim** with a [link](https://example.com) inside."
	out := PrepareTextForSpeech(in)
	assert.Equal(t, "Bold claim with a link inside.", out)
}

func TestPrepareTextForSpeechLeavesPlainTextAlone(t *testing.T) {
	in := "This transfer sent 1.5 SUI and paid a small gas fee."
	assert.Equal(t, in, PrepareTextForSpeech(in))
}
