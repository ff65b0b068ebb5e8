package main

import (
	"fmt"
	"strings"
)

// responseLabel returns the anonymous label for position i: "Response A",
// "Response B", ...
func responseLabel(i int) string {
	return fmt.Sprintf("Response %c", rune('A'+i))
}

// AssignLabels assigns anonymous sequential labels to successful Stage-1
// responses in input order and builds the label-to-model mapping used to
// de-anonymize rankings. Pure function: the same input always yields the
// same bijection.
func AssignLabels(stage1Results []Stage1Response) (labels []string, labelToModel map[string]string) {
	labels = make([]string, len(stage1Results))
	labelToModel = make(map[string]string, len(stage1Results))

	for i, result := range stage1Results {
		label := responseLabel(i)
		labels[i] = label
		labelToModel[label] = result.Model
	}

	return labels, labelToModel
}

// formatAnonymizedResponses renders Stage-1 responses under their anonymous
// labels for inclusion in Stage-2 prompts.
func formatAnonymizedResponses(stage1Results []Stage1Response) string {
	var b strings.Builder
	for i, result := range stage1Results {
		b.WriteString(fmt.Sprintf("%s:\n%s\n\n", responseLabel(i), result.Response))
	}
	return b.String()
}
