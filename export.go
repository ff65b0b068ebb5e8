package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// ExportMarkdown renders a conversation as a Markdown document
func ExportMarkdown(conversation *Conversation) string {
	var md strings.Builder

	md.WriteString(fmt.Sprintf("# %s\n\n", conversation.Title))
	md.WriteString(fmt.Sprintf("**Date:** %s\n", conversation.CreatedAt.Format("2006-01-02 15:04:05")))
	md.WriteString(fmt.Sprintf("**Framework:** %s\n\n", conversation.Framework))

	for _, msg := range conversation.Messages {
		switch msg.Role {
		case "user":
			md.WriteString(fmt.Sprintf("## User\n\n%s\n\n", msg.Content))
		case "assistant":
			md.WriteString("## LLM Council\n\n")

			if len(msg.Stage1) > 0 {
				md.WriteString("### Stage 1: Individual Responses\n\n")
				for _, res := range msg.Stage1 {
					md.WriteString(fmt.Sprintf("**%s**:\n\n%s\n\n", res.Model, res.Response))
				}
			}

			if len(msg.Stage2) > 0 {
				md.WriteString("### Stage 2: Peer Review\n\n")
				for _, res := range msg.Stage2 {
					md.WriteString(fmt.Sprintf("**%s**:\n\n%s\n\n", res.Model, res.Ranking))
				}
			}

			if msg.Stage3 != nil {
				md.WriteString("### Stage 3: Final Synthesis\n\n")
				md.WriteString(fmt.Sprintf("%s\n\n", msg.Stage3.Response))
			}
		}

		md.WriteString("---\n\n")
	}

	return md.String()
}

// ExportPDF renders a conversation as a PDF document
func ExportPDF(conversation *Conversation) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(25, 25, 25)
	pdf.AddPage()

	// Core PDF fonts are latin-1; translate what we can
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	writeHeading := func(text string, size float64) {
		pdf.SetFont("Helvetica", "B", size)
		pdf.MultiCell(0, size/2+3, tr(text), "", "L", false)
		pdf.Ln(2)
	}
	writeBody := func(text string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(text), "", "L", false)
		pdf.Ln(3)
	}

	writeHeading(conversation.Title, 18)
	writeBody(fmt.Sprintf("Date: %s", conversation.CreatedAt.Format("2006-01-02 15:04:05")))
	writeBody(fmt.Sprintf("Framework: %s", conversation.Framework))
	pdf.Ln(4)

	for _, msg := range conversation.Messages {
		switch msg.Role {
		case "user":
			writeHeading("User", 14)
			writeBody(msg.Content)
		case "assistant":
			writeHeading("LLM Council", 14)

			if len(msg.Stage1) > 0 {
				writeHeading("Stage 1: Individual Responses", 12)
				for _, res := range msg.Stage1 {
					writeHeading(res.Model, 11)
					writeBody(res.Response)
				}
			}

			if len(msg.Stage2) > 0 {
				writeHeading("Stage 2: Peer Review", 12)
				for _, res := range msg.Stage2 {
					writeHeading(res.Model, 11)
					writeBody(res.Ranking)
				}
			}

			if msg.Stage3 != nil {
				writeHeading("Stage 3: Final Synthesis", 12)
				writeBody(msg.Stage3.Response)
			}
		}

		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
