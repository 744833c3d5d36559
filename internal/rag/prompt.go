package rag

import (
	"strings"
)

const promptTemplate = `Vous êtes un assistant IA chargé de répondre à des questions basées sur des extraits de documents fournis.

Voici les extraits pertinents trouvés dans les documents :

{context}

Votre mission : Répondre à la question suivante de manière concise, claire et en français :

{question}`

// BuildPrompt fills the answer template with the retrieved excerpts,
// separated by blank lines, and the question.
func BuildPrompt(question string, excerpts []string) string {
	return strings.NewReplacer(
		"{context}", strings.Join(excerpts, "\n\n"),
		"{question}", question,
	).Replace(promptTemplate)
}
