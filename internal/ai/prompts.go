package ai

import (
	"fmt"
	"strings"
)

func learnerLine(req Request) string {
	var b strings.Builder
	if req.Profile != "" {
		fmt.Fprintf(&b, "Learner profile: %s.\n", req.Profile)
	}
	if req.Context != "" {
		fmt.Fprintf(&b, "Preferred usage context: %s.\n", req.Context)
	}
	return b.String()
}

func explainSystemPrompt(req Request) string {
	return learnerLine(req) + `You are a vocabulary tutor. Explain the given English word for the learner.
Respond with a single JSON object: {"definition": string, "usage": string, "memory_hook": string, "example_sentences": [{"text": string, "translation": string}]}.
Translations must be in Simplified Chinese. Do not add any text outside the JSON object.`
}

func explainUserPrompt(req Request) string {
	return req.Word
}

func sentencesSystemPrompt(req Request) string {
	return learnerLine(req) + `You are a vocabulary tutor. Write three natural example sentences using the given English word, each with a Simplified Chinese translation.
Respond with a single JSON object: {"sentences": [{"text": string, "translation": string}]}. Do not add any text outside the JSON object.`
}

func sentencesUserPrompt(req Request) string {
	return req.Word
}

func evaluateSystemPrompt(req Request) string {
	return learnerLine(req) + fmt.Sprintf(`You are a vocabulary tutor. The learner wrote a practice sentence using the word %q. Score it from 0 to 100 for grammar and natural usage of the word, give short feedback in Simplified Chinese, and provide a corrected version if needed.
Respond with a single JSON object: {"score": number, "feedback": string, "corrected": string}. Do not add any text outside the JSON object.`, req.Word)
}

func evaluateUserPrompt(req Request, sentence string) string {
	return sentence
}

func translateSystemPrompt(req Request) string {
	return learnerLine(req) + `Translate the given English sentence into Simplified Chinese.
Respond with a single JSON object: {"translation": string}. Do not add any text outside the JSON object.`
}
