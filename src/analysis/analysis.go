// Package analysis sends capture artifacts to the chat model and
// persists the exchange: <base>.prompt.txt holds what was sent,
// <base>.response.txt holds the reply.
package analysis

import (
	"fmt"
	"log"
	"os"
	"strings"

	"screen-capture-llm/src/llm"
)

// PromptEnvVar overrides the default analysis prompt.
const PromptEnvVar = "AI_PROMPT"

// maxInputChars caps OCR text sent to the model so a text-dense capture
// cannot produce an oversized prompt. Counted in runes: a cut must not
// split a multi-byte character into invalid UTF-8.
const maxInputChars = 12000

const defaultPrompt = "You will be given a single question (either multiple-choice or numeric). Follow these rules exactly.\n\n" +
	"1) Multiple-choice (single-correct):\n" +
	"   - Options may or may not be labeled A/B/C/D. If unlabeled, assume order A, B, C, D, ...\n" +
	"   - Provide concise reasoning.\n" +
	"   - Output exactly one line: <answer>X</answer> where X is the chosen option letter.\n\n" +
	"2) Numeric questions:\n" +
	"   - Show brief step-by-step arithmetic.\n" +
	"   - Output exactly one line: <answer>final numeric value</answer>.\n\n" +
	"3) Type tag (must output exactly one line):\n" +
	"   - Output <type>X</type> where X is MCQ for single-correct MCQs, NUM for numeric, and OTHER for any other type.\n" +
	"   - Ensure the <answer> tag format matches the determined type.\n\n" +
	"4) General:\n" +
	"   - Do not ask clarifying questions; if info is missing, state a one-line assumption and proceed.\n" +
	"   - Keep reasoning succinct.\n" +
	"   - Do not include any extra text before or after the reasoning, <type>, and <answer> lines.\n" +
	"   - Use plain text only (no Markdown or emojis)."

// Overridable in tests; production uses the llm package directly.
var (
	complete       = llm.Complete
	completeVision = llm.CompleteVision
)

// TextFile analyzes an OCR text artifact and returns the response path.
func TextFile(textPath string) (string, error) {
	raw, err := os.ReadFile(textPath)
	if err != nil {
		return "", fmt.Errorf("failed to read OCR text from %s: %w", textPath, err)
	}

	input := strings.TrimSpace(string(raw))
	prompt := promptTemplate()

	var responseText string
	if input == "" {
		responseText = "No text was detected in the image."
	} else {
		input = capInput(input)
		writePromptArtifact(replaceExt(textPath, ".prompt.txt"), prompt+"\n\n"+input)
		responseText, err = complete(prompt, input)
		if err != nil {
			return "", fmt.Errorf("AI analysis failed: %w", err)
		}
	}

	return writeResponse(replaceExt(textPath, ".response.txt"), responseText)
}

// ImageFile analyzes an image artifact with the multimodal model and
// returns the response path.
func ImageFile(imagePath string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image from %s: %w", imagePath, err)
	}

	prompt := promptTemplate()
	writePromptArtifact(replaceExt(imagePath, ".prompt.txt"), fmt.Sprintf("%s\n\n[IMAGE: %s]", prompt, imagePath))

	responseText, err := completeVision(prompt, imageData)
	if err != nil {
		return "", fmt.Errorf("multimodal analysis failed: %w", err)
	}

	return writeResponse(replaceExt(imagePath, ".response.txt"), responseText)
}

func promptTemplate() string {
	if p := os.Getenv(PromptEnvVar); p != "" {
		return p
	}
	return defaultPrompt
}

func capInput(s string) string {
	runes := []rune(s)
	if len(runes) > maxInputChars {
		return string(runes[:maxInputChars])
	}
	return s
}

// Prompt artifacts are for debugging; failing to write one is not fatal.
func writePromptArtifact(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Printf("could not write prompt artifact %s: %v", path, err)
	}
}

func writeResponse(path, text string) (string, error) {
	if err := os.WriteFile(path, []byte(strings.TrimSpace(text)), 0o644); err != nil {
		return "", fmt.Errorf("failed to save AI response to %s: %w", path, err)
	}
	return path, nil
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndexAny(path, `/\`) {
		return path[:i] + ext
	}
	return path + ext
}
