package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameworkByName(t *testing.T) {
	for _, name := range []string{FrameworkStandard, FrameworkDebate, FrameworkSixHats, FrameworkEnsemble} {
		fw, err := FrameworkByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, fw.Name())
	}

	fw, err := FrameworkByName("")
	require.NoError(t, err)
	assert.Equal(t, FrameworkStandard, fw.Name(), "empty name defaults to standard")

	_, err = FrameworkByName("socratic")
	assert.Error(t, err)
}

func TestPlainStage1Calls(t *testing.T) {
	fc := FrameworkConfig{CouncilModels: []string{"model/a", "model/b"}}
	fw, _ := FrameworkByName(FrameworkStandard)

	calls := fw.Stage1Calls(fc, "What is Go?")

	require.Len(t, calls, 2)
	for i, call := range calls {
		assert.Equal(t, fc.CouncilModels[i], call.Model)
		assert.Equal(t, fc.CouncilModels[i], call.DisplayName)
		require.Len(t, call.Messages, 1)
		assert.Equal(t, "user", call.Messages[0].Role)
		assert.Equal(t, "What is Go?", call.Messages[0].Content)
	}
}

func TestSixHatsStage1Calls(t *testing.T) {
	fw, _ := FrameworkByName(FrameworkSixHats)

	t.Run("each model gets a hat by position", func(t *testing.T) {
		fc := FrameworkConfig{CouncilModels: []string{"model/a", "model/b", "model/c"}}
		calls := fw.Stage1Calls(fc, "Should we rewrite the service?")

		require.Len(t, calls, 3)
		assert.Equal(t, "model/a (White Hat)", calls[0].DisplayName)
		assert.Equal(t, "model/b (Red Hat)", calls[1].DisplayName)
		assert.Equal(t, "model/c (Black Hat)", calls[2].DisplayName)

		for _, call := range calls {
			require.Len(t, call.Messages, 2)
			assert.Equal(t, "system", call.Messages[0].Role)
			assert.Contains(t, call.Messages[0].Content, "You are wearing the")
			assert.Equal(t, "user", call.Messages[1].Role)
		}
	})

	t.Run("hats cycle past six models", func(t *testing.T) {
		models := make([]string, 8)
		for i := range models {
			models[i] = "model/x"
		}
		calls := fw.Stage1Calls(FrameworkConfig{CouncilModels: models}, "Question")

		require.Len(t, calls, 8)
		assert.Equal(t, "model/x (Blue Hat)", calls[5].DisplayName)
		assert.Equal(t, "model/x (White Hat)", calls[6].DisplayName)
		assert.Equal(t, "model/x (Red Hat)", calls[7].DisplayName)
	})
}

func TestDebateStage2ProducesCritiques(t *testing.T) {
	server := mockProviderServer(t, mockCompletionHandler(t, "Response A overstates its case. Response B ignores the data."))
	client := newTestClient(server.URL)
	fc := FrameworkConfig{CouncilModels: []string{"model/a", "model/b"}}

	fw, _ := FrameworkByName(FrameworkDebate)
	results, skipped := fw.RunStage2(context.Background(), client, fc, "Is Go better than Rust?", "Response A:\n...\n\nResponse B:\n...")

	assert.False(t, skipped)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.NotEmpty(t, result.Ranking)
		assert.Empty(t, result.ParsedRanking, "critiques carry no parsed ranking")
	}
	assert.False(t, fw.UsesRanking())
}

func TestEnsembleSkipsStage2(t *testing.T) {
	fw, _ := FrameworkByName(FrameworkEnsemble)

	results, skipped := fw.RunStage2(context.Background(), nil, FrameworkConfig{}, "Question", "responses")

	assert.True(t, skipped)
	assert.Empty(t, results)
	assert.False(t, fw.UsesRanking())
}

func TestStage3Prompts(t *testing.T) {
	tests := []struct {
		framework string
		wantLabel string
	}{
		{FrameworkStandard, "STAGE 2 - Peer Rankings:"},
		{FrameworkDebate, "STAGE 2 - Peer Critiques:"},
		{FrameworkSixHats, "STAGE 2 - Perspective Review:"},
		{FrameworkEnsemble, "(Stage 2 skipped for Ensemble mode)"},
	}

	for _, tt := range tests {
		t.Run(tt.framework, func(t *testing.T) {
			fw, err := FrameworkByName(tt.framework)
			require.NoError(t, err)

			prompt := fw.Stage3Prompt("What is Go?", "stage one text", "stage two text")

			assert.True(t, strings.HasPrefix(prompt, "You are the Chairman of an LLM Council."))
			assert.Contains(t, prompt, "Original Question: What is Go?")
			assert.Contains(t, prompt, "stage one text")
			assert.Contains(t, prompt, tt.wantLabel)
		})
	}
}

func TestCollectRankingsPromptContract(t *testing.T) {
	// Capture what the ranking stage actually sends
	var capturedPrompt string
	captureServer := mockProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		capturedPrompt = req.Messages[0].Content
		writeCompletion(w, "FINAL RANKING:\n1. Response A")
	})
	client := newTestClient(captureServer.URL)

	fc := FrameworkConfig{CouncilModels: []string{"model/a"}}
	results := collectRankings(context.Background(), client, fc, "What is Go?", "Response A:\nsome answer")

	require.Len(t, results, 1)
	assert.Contains(t, capturedPrompt, "FINAL RANKING:", "prompt must spell out the marker")
	assert.Contains(t, capturedPrompt, "Response A:\nsome answer")
	assert.Equal(t, []string{"Response A"}, results[0].ParsedRanking)
}
