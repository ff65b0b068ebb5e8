package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"
)

// The only user-facing error strings the council produces. Partial results
// are always preferred over these.
const (
	allFailedText        = "All models failed to respond. Please try again."
	synthesisFailedText  = "Error: Unable to generate final synthesis."
	fallbackTitle        = "New Conversation"
	errorModelIdentifier = "error"
)

// Council orchestrates the three-stage process: concurrent Stage-1 dispatch,
// strategy-specific Stage-2 evaluation, and chairman synthesis.
type Council struct {
	client *OpenRouterClient
	config *Config
}

// NewCouncil creates an orchestrator over the given gateway client
func NewCouncil(client *OpenRouterClient, cfg *Config) *Council {
	return &Council{client: client, config: cfg}
}

// runStage1 dispatches Stage-1 calls and splits outcomes into successes and
// failures, both in request order. Labels later follow the success order, so
// anonymization is reproducible for a given council list.
func (co *Council) runStage1(ctx context.Context, fw Framework, fc FrameworkConfig, userQuery string) ([]Stage1Response, []Stage1Error) {
	calls := fw.Stage1Calls(fc, userQuery)

	modelCalls := make([]ModelCall, len(calls))
	for i, call := range calls {
		modelCalls[i] = ModelCall{Model: call.Model, Messages: call.Messages}
	}
	responses := co.client.QueryCallsParallel(ctx, modelCalls)

	var successes []Stage1Response
	var failures []Stage1Error
	for i, response := range responses {
		if response.OK() {
			successes = append(successes, Stage1Response{
				Model:    calls[i].DisplayName,
				Response: response.Content,
			})
		} else {
			failures = append(failures, Stage1Error{
				Model: calls[i].DisplayName,
				Error: response.Error,
			})
		}
	}

	return successes, failures
}

// synthesize runs the chairman call and converts its failure into the fixed
// apology result; a chairman failure never fails the run as a whole.
func (co *Council) synthesize(ctx context.Context, fw Framework, fc FrameworkConfig, userQuery string, stage1Results []Stage1Response, stage2Results []Stage2Ranking) Stage3Response {
	prompt := fw.Stage3Prompt(userQuery, formatStage1Text(stage1Results), formatStage2Text(stage2Results))
	messages := []ChatMessage{{Role: "user", Content: prompt}}

	response := co.client.QueryModel(ctx, fc.ChairmanModel, messages, ModelQueryTimeout)
	if !response.OK() {
		log.Printf("Chairman model %s failed: %s", fc.ChairmanModel, response.Error)
		return Stage3Response{Model: fc.ChairmanModel, Response: synthesisFailedText}
	}

	return Stage3Response{Model: fc.ChairmanModel, Response: response.Content}
}

// Run executes the full three-stage council process and returns all stage
// results plus run metadata. The only Go error is an unknown framework name;
// model failures are absorbed per the council's degradation rules.
func (co *Council) Run(ctx context.Context, userQuery string, fc FrameworkConfig) ([]Stage1Response, []Stage2Ranking, Stage3Response, Metadata, error) {
	runCfg := co.config.withDefaults(fc)
	fw, err := FrameworkByName(runCfg.Framework)
	if err != nil {
		return nil, nil, Stage3Response{}, Metadata{}, err
	}

	// Stage 1: concurrent collection, partial failures tolerated
	stage1Results, stage1Errors := co.runStage1(ctx, fw, runCfg, userQuery)

	metadata := Metadata{
		Framework:         fw.Name(),
		CouncilModels:     respondingModels(stage1Results),
		ChairmanModel:     runCfg.ChairmanModel,
		LabelToModel:      map[string]string{},
		AggregateRankings: []AggregateRanking{},
		Stage1Errors:      stage1Errors,
	}

	// Terminal failure: nothing to evaluate or synthesize
	if len(stage1Results) == 0 {
		stage3 := Stage3Response{Model: errorModelIdentifier, Response: allFailedText}
		return []Stage1Response{}, []Stage2Ranking{}, stage3, metadata, nil
	}

	// Anonymize before peer evaluation
	_, labelToModel := AssignLabels(stage1Results)
	metadata.LabelToModel = labelToModel
	responsesText := formatAnonymizedResponses(stage1Results)

	// Stage 2: rank, critique, or skip, per strategy
	stage2Results, skipped := fw.RunStage2(ctx, co.client, runCfg, userQuery, responsesText)
	if skipped {
		stage2Results = []Stage2Ranking{}
	}

	if fw.UsesRanking() && len(stage2Results) > 0 {
		metadata.AggregateRankings = CalculateAggregateRankings(stage2Results, labelToModel)
	}

	// Stage 3: chairman synthesis
	stage3Result := co.synthesize(ctx, fw, runCfg, userQuery, stage1Results, stage2Results)

	return stage1Results, stage2Results, stage3Result, metadata, nil
}

// RunStream executes the council process while emitting progress events on
// the returned channel, including incremental chairman output. The channel
// is closed after the final event. When generateTitle is set, a short
// conversation title is generated concurrently with the stages and emitted
// as a title_complete event before the run completes.
func (co *Council) RunStream(ctx context.Context, userQuery string, fc FrameworkConfig, generateTitle bool) <-chan CouncilEvent {
	events := make(chan CouncilEvent, 8)

	go func() {
		defer close(events)

		runCfg := co.config.withDefaults(fc)
		fw, err := FrameworkByName(runCfg.Framework)
		if err != nil {
			events <- CouncilEvent{Type: "error", Message: err.Error()}
			return
		}

		// Title generation runs alongside the stages
		var titleChan chan string
		if generateTitle {
			titleChan = make(chan string, 1)
			go func() {
				defer close(titleChan)
				title, err := co.GenerateConversationTitle(ctx, userQuery)
				if err != nil {
					log.Printf("Failed to generate title: %v", err)
					titleChan <- fallbackTitle
					return
				}
				titleChan <- title
			}()
		}

		// Stage 1
		events <- CouncilEvent{Type: "stage1_start"}
		stage1Results, stage1Errors := co.runStage1(ctx, fw, runCfg, userQuery)
		events <- CouncilEvent{
			Type:     "stage1_complete",
			Data:     stage1Results,
			Metadata: map[string]interface{}{"stage1_errors": stage1Errors},
		}

		if len(stage1Results) == 0 {
			events <- CouncilEvent{Type: "error", Message: allFailedText}
			return
		}

		_, labelToModel := AssignLabels(stage1Results)
		responsesText := formatAnonymizedResponses(stage1Results)

		// Stage 2
		events <- CouncilEvent{Type: "stage2_start"}
		stage2Results, skipped := fw.RunStage2(ctx, co.client, runCfg, userQuery, responsesText)
		aggregateRankings := []AggregateRanking{}
		if skipped {
			stage2Results = []Stage2Ranking{}
			events <- CouncilEvent{
				Type:     "stage2_skipped",
				Metadata: map[string]interface{}{"label_to_model": labelToModel},
			}
		} else {
			if fw.UsesRanking() && len(stage2Results) > 0 {
				aggregateRankings = CalculateAggregateRankings(stage2Results, labelToModel)
			}
			events <- CouncilEvent{
				Type: "stage2_complete",
				Data: stage2Results,
				Metadata: map[string]interface{}{
					"label_to_model":     labelToModel,
					"aggregate_rankings": aggregateRankings,
				},
			}
		}

		// Stage 3: stream the chairman's synthesis incrementally
		events <- CouncilEvent{Type: "stage3_start"}
		stage3Result := co.synthesizeStream(ctx, fw, runCfg, userQuery, stage1Results, stage2Results, events)
		events <- CouncilEvent{Type: "stage3_complete", Data: stage3Result}

		if titleChan != nil {
			if title := <-titleChan; title != "" {
				events <- CouncilEvent{
					Type: "title_complete",
					Data: map[string]string{"title": title},
				}
			}
		}

		events <- CouncilEvent{
			Type: "complete",
			Metadata: Metadata{
				Framework:         fw.Name(),
				CouncilModels:     respondingModels(stage1Results),
				ChairmanModel:     runCfg.ChairmanModel,
				LabelToModel:      labelToModel,
				AggregateRankings: aggregateRankings,
				Stage1Errors:      stage1Errors,
			},
		}
	}()

	return events
}

// synthesizeStream streams the chairman call, forwarding fragments as
// stage3_chunk events. Partial output already streamed is preserved on
// failure; the apology text is used only when nothing was streamed.
func (co *Council) synthesizeStream(ctx context.Context, fw Framework, fc FrameworkConfig, userQuery string, stage1Results []Stage1Response, stage2Results []Stage2Ranking, events chan<- CouncilEvent) Stage3Response {
	prompt := fw.Stage3Prompt(userQuery, formatStage1Text(stage1Results), formatStage2Text(stage2Results))
	messages := []ChatMessage{{Role: "user", Content: prompt}}

	var b strings.Builder
	for chunk := range co.client.QueryModelStream(ctx, fc.ChairmanModel, messages, ModelQueryTimeout) {
		if chunk.Err != nil {
			log.Printf("Chairman stream %s failed: %v", fc.ChairmanModel, chunk.Err)
			events <- CouncilEvent{Type: "error", Message: fmt.Sprintf("synthesis stream failed: %v", chunk.Err)}
			continue
		}
		b.WriteString(chunk.Content)
		events <- CouncilEvent{Type: "stage3_chunk", Data: map[string]string{"content": chunk.Content}}
	}

	if b.Len() == 0 {
		return Stage3Response{Model: fc.ChairmanModel, Response: synthesisFailedText}
	}
	return Stage3Response{Model: fc.ChairmanModel, Response: b.String()}
}

// GenerateConversationTitle generates a short title for a conversation.
// Uses the configured fast model to create a 3-5 word summary of the query.
func (co *Council) GenerateConversationTitle(ctx context.Context, userQuery string) (string, error) {
	titlePrompt := fmt.Sprintf(`Generate a very short title (3-5 words maximum) that summarizes the following question.
The title should be concise and descriptive. Do not use quotes or punctuation in the title.

Question: %s

Title:`, userQuery)

	messages := []ChatMessage{{Role: "user", Content: titlePrompt}}

	response := co.client.QueryModel(ctx, co.config.TitleModel, messages, TitleGenTimeout)
	if !response.OK() {
		return "", fmt.Errorf("title generation failed: %s", response.Error)
	}

	title := strings.TrimSpace(response.Content)
	title = strings.Trim(title, "\"'")

	if utf8.RuneCountInString(title) > 50 {
		title = string([]rune(title)[:47]) + "..."
	}

	return title, nil
}

// formatStage1Text renders Stage-1 results, de-anonymized, for the chairman
func formatStage1Text(stage1Results []Stage1Response) string {
	var b strings.Builder
	for _, result := range stage1Results {
		b.WriteString(fmt.Sprintf("Model: %s\nResponse: %s\n\n", result.Model, result.Response))
	}
	return b.String()
}

// formatStage2Text renders Stage-2 evaluations for the chairman
func formatStage2Text(stage2Results []Stage2Ranking) string {
	var b strings.Builder
	for _, result := range stage2Results {
		b.WriteString(fmt.Sprintf("Model: %s\nFeedback: %s\n\n", result.Model, result.Ranking))
	}
	return b.String()
}

// respondingModels lists the display names of models that answered Stage 1
func respondingModels(stage1Results []Stage1Response) []string {
	models := make([]string, len(stage1Results))
	for i, result := range stage1Results {
		models[i] = result.Model
	}
	return models
}
