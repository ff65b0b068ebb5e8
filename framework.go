package main

import (
	"context"
	"fmt"
)

// Framework names form a closed set; FrameworkByName is the only constructor.
const (
	FrameworkStandard = "standard"
	FrameworkDebate   = "debate"
	FrameworkSixHats  = "six_hats"
	FrameworkEnsemble = "ensemble"
)

// Framework controls what Stage-1 prompts look like, whether Stage 2 ranks,
// critiques or is skipped, and what the Stage-3 synthesis instruction is.
// Implementations are stateless; one is selected per run and never changed
// mid-run.
type Framework interface {
	// Name returns the framework identifier stored with conversations
	Name() string

	// Stage1Calls plans one gateway call per council model. DisplayName is
	// the identity the model's outcome is reported under.
	Stage1Calls(fc FrameworkConfig, userQuery string) []Stage1Call

	// RunStage2 runs the peer-evaluation stage over the anonymized Stage-1
	// responses. skipped is true when the framework has no Stage 2.
	RunStage2(ctx context.Context, client *OpenRouterClient, fc FrameworkConfig, userQuery, responsesText string) (results []Stage2Ranking, skipped bool)

	// UsesRanking reports whether Stage-2 output feeds rank aggregation
	UsesRanking() bool

	// Stage3Prompt builds the chairman's synthesis prompt
	Stage3Prompt(userQuery, stage1Text, stage2Text string) string
}

// FrameworkByName resolves a framework identifier to its implementation
func FrameworkByName(name string) (Framework, error) {
	switch name {
	case FrameworkStandard, "":
		return standardFramework{}, nil
	case FrameworkDebate:
		return debateFramework{}, nil
	case FrameworkSixHats:
		return sixHatsFramework{}, nil
	case FrameworkEnsemble:
		return ensembleFramework{}, nil
	default:
		return nil, fmt.Errorf("unknown framework: %q", name)
	}
}

// plainStage1Calls sends the user query unmodified to every council model
func plainStage1Calls(fc FrameworkConfig, userQuery string) []Stage1Call {
	messages := []ChatMessage{{Role: "user", Content: userQuery}}
	calls := make([]Stage1Call, len(fc.CouncilModels))
	for i, model := range fc.CouncilModels {
		calls[i] = Stage1Call{Model: model, DisplayName: model, Messages: messages}
	}
	return calls
}

// collectRankings runs the shared ranking Stage 2 used by standard and
// six_hats: every council model ranks all anonymized Stage-1 answers.
func collectRankings(ctx context.Context, client *OpenRouterClient, fc FrameworkConfig, userQuery, responsesText string) []Stage2Ranking {
	rankingPrompt := fmt.Sprintf(`You are evaluating different responses to the following question:

Question: %s

Here are the responses from different models (anonymized):

%s

Your task:
1. First, evaluate each response individually. For each response, explain what it does well and what it does poorly.
2. Then, at the very end of your response, provide a final ranking.

IMPORTANT: Your final ranking MUST be formatted EXACTLY as follows:
- Start with the line "FINAL RANKING:" (all caps, with colon)
- Then list the responses from best to worst as a numbered list
- Each line should be: number, period, space, then ONLY the response label (e.g., "1. Response A")
- Do not add any other text or explanations in the ranking section

Example of the correct format for your ENTIRE response:

Response A provides good detail on X but misses Y...
Response B is accurate but lacks depth on Z...
Response C offers the most comprehensive answer...

FINAL RANKING:
1. Response C
2. Response A
3. Response B

Now provide your evaluation and ranking:`, userQuery, responsesText)

	messages := []ChatMessage{{Role: "user", Content: rankingPrompt}}
	responses := client.QueryModelsParallel(ctx, fc.CouncilModels, messages)

	var results []Stage2Ranking
	for i, response := range responses {
		if !response.OK() {
			continue
		}
		results = append(results, Stage2Ranking{
			Model:         fc.CouncilModels[i],
			Ranking:       response.Content,
			ParsedRanking: ParseRankingFromText(response.Content),
		})
	}
	return results
}

// chairmanPrompt assembles the shared Stage-3 prompt skeleton
func chairmanPrompt(userQuery, stage1Text, stage2Label, stage2Text, instruction string) string {
	return fmt.Sprintf(`You are the Chairman of an LLM Council.

Original Question: %s

STAGE 1 - Individual Responses:
%s

%s
%s

Your task: %s

Provide a clear, well-reasoned final answer:`, userQuery, stage1Text, stage2Label, stage2Text, instruction)
}

// standardFramework: plain Stage 1, peer ranking, synthesis weighing both.
type standardFramework struct{}

func (standardFramework) Name() string { return FrameworkStandard }

func (standardFramework) Stage1Calls(fc FrameworkConfig, userQuery string) []Stage1Call {
	return plainStage1Calls(fc, userQuery)
}

func (standardFramework) RunStage2(ctx context.Context, client *OpenRouterClient, fc FrameworkConfig, userQuery, responsesText string) ([]Stage2Ranking, bool) {
	return collectRankings(ctx, client, fc, userQuery, responsesText), false
}

func (standardFramework) UsesRanking() bool { return true }

func (standardFramework) Stage3Prompt(userQuery, stage1Text, stage2Text string) string {
	return chairmanPrompt(userQuery, stage1Text,
		"STAGE 2 - Peer Rankings:", stage2Text,
		"Synthesize all of this information into a single, comprehensive, accurate answer. Consider the individual responses and the peer rankings.")
}

// debateFramework: plain Stage 1, peer critiques instead of rankings (no
// structured ranking requested, aggregation skipped), conflict-resolving
// synthesis.
type debateFramework struct{}

func (debateFramework) Name() string { return FrameworkDebate }

func (debateFramework) Stage1Calls(fc FrameworkConfig, userQuery string) []Stage1Call {
	return plainStage1Calls(fc, userQuery)
}

func (debateFramework) RunStage2(ctx context.Context, client *OpenRouterClient, fc FrameworkConfig, userQuery, responsesText string) ([]Stage2Ranking, bool) {
	critiquePrompt := fmt.Sprintf(`You are participating in a debate about: "%s"

Here are the arguments from other participants (anonymized):

%s

Your task:
1. Critically analyze each response, identifying weak points, logical fallacies, or missing information.
2. Highlight the strongest counter-arguments.
3. Be direct and constructive.

Provide your critique for each response.`, userQuery, responsesText)

	messages := []ChatMessage{{Role: "user", Content: critiquePrompt}}
	responses := client.QueryModelsParallel(ctx, fc.CouncilModels, messages)

	var results []Stage2Ranking
	for i, response := range responses {
		if !response.OK() {
			continue
		}
		// The ranking field carries critique text; no ranking is parsed
		results = append(results, Stage2Ranking{
			Model:         fc.CouncilModels[i],
			Ranking:       response.Content,
			ParsedRanking: []string{},
		})
	}
	return results, false
}

func (debateFramework) UsesRanking() bool { return false }

func (debateFramework) Stage3Prompt(userQuery, stage1Text, stage2Text string) string {
	return chairmanPrompt(userQuery, stage1Text,
		"STAGE 2 - Peer Critiques:", stage2Text,
		"Synthesize a final answer by weighing the original arguments and the peer critiques. Resolve the conflicts and find the strongest truth.")
}

// sixHatsFramework: each council model answers under one of six fixed role
// prompts, cycling when the council is larger than six; Stage 2 ranks which
// perspective was most valuable.
type sixHatsFramework struct{}

// thinkingHats are the six fixed roles, assigned by position in the council
// model list.
var thinkingHats = []struct {
	Name   string
	Prompt string
}{
	{"White Hat", "Focus on available data and facts. Be neutral and objective."},
	{"Red Hat", "Focus on intuition, feelings, and hunches. No need to justify them."},
	{"Black Hat", "Focus on caution, risks, and potential problems. Be critical."},
	{"Yellow Hat", "Focus on benefits, optimism, and value. Be positive."},
	{"Green Hat", "Focus on creativity, alternatives, and new ideas."},
	{"Blue Hat", "Focus on process control, organization, and next steps."},
}

func (sixHatsFramework) Name() string { return FrameworkSixHats }

func (sixHatsFramework) Stage1Calls(fc FrameworkConfig, userQuery string) []Stage1Call {
	calls := make([]Stage1Call, len(fc.CouncilModels))
	for i, model := range fc.CouncilModels {
		hat := thinkingHats[i%len(thinkingHats)]
		calls[i] = Stage1Call{
			Model: model,
			// The hat stays paired with its model through concurrent
			// completion because outcomes are indexed by call position
			DisplayName: fmt.Sprintf("%s (%s)", model, hat.Name),
			Messages: []ChatMessage{
				{Role: "system", Content: fmt.Sprintf("You are wearing the %s. %s", hat.Name, hat.Prompt)},
				{Role: "user", Content: userQuery},
			},
		}
	}
	return calls
}

func (sixHatsFramework) RunStage2(ctx context.Context, client *OpenRouterClient, fc FrameworkConfig, userQuery, responsesText string) ([]Stage2Ranking, bool) {
	return collectRankings(ctx, client, fc, userQuery, responsesText), false
}

func (sixHatsFramework) UsesRanking() bool { return true }

func (sixHatsFramework) Stage3Prompt(userQuery, stage1Text, stage2Text string) string {
	return chairmanPrompt(userQuery, stage1Text,
		"STAGE 2 - Perspective Review:", stage2Text,
		"Synthesize a final answer that integrates these diverse perspectives (Hats). Ensure the final decision considers facts, feelings, risks, benefits, and creativity.")
}

// ensembleFramework: Stage 2 is skipped entirely; the chairman synthesizes
// consensus directly from the Stage-1 answers.
type ensembleFramework struct{}

func (ensembleFramework) Name() string { return FrameworkEnsemble }

func (ensembleFramework) Stage1Calls(fc FrameworkConfig, userQuery string) []Stage1Call {
	return plainStage1Calls(fc, userQuery)
}

func (ensembleFramework) RunStage2(ctx context.Context, client *OpenRouterClient, fc FrameworkConfig, userQuery, responsesText string) ([]Stage2Ranking, bool) {
	return nil, true
}

func (ensembleFramework) UsesRanking() bool { return false }

func (ensembleFramework) Stage3Prompt(userQuery, stage1Text, stage2Text string) string {
	return chairmanPrompt(userQuery, stage1Text,
		"STAGE 2 - Skipped", "(Stage 2 skipped for Ensemble mode)",
		"Synthesize the provided responses into a single, high-quality answer. Identify the consensus and best insights from the ensemble.")
}
