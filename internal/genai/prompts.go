package genai

import (
	"bytes"
	"text/template"
)

const questionsSystemPrompt = `You are an expert technical interviewer. Generate exactly {{.Count}} unique interview questions following the specified JSON schema.`

const questionsPrompt = `Generate exactly {{.Count}} unique technical interview questions for a {{.Role}} position with {{.Experience}} experience level.

Focus areas: {{.Topics}}

Requirements:
- Create diverse questions covering different aspects of {{.Topics}}
- Mix theoretical concepts, practical applications, and problem-solving scenarios
- Ensure questions are appropriate for {{.Experience}} level (avoid overly complex topics for juniors)
- Make each question unique and non-repetitive
- Questions should be clear and specific

Generate exactly {{.Count}} questions focused on {{.Topics}}.`

const explanationSystemPrompt = `You are a technical expert assistant who provides comprehensive explanations of technical concepts. Generate detailed, accurate, and well-structured explanations following the specified JSON schema.`

const explanationPrompt = `Provide a comprehensive technical explanation for the following question/topic:

"{{.Question}}"

Requirements:
- Write a detailed explanation of 200-400 words covering the concept, how it works, and why it's important
- Include 3-5 key points that cover the most important aspects of this topic
- Provide 2-3 practical examples or use cases that illustrate the concept
- List 2-3 best practices or recommendations related to this topic
- Make the content appropriate for someone learning this topic
- Focus on accuracy, clarity, and practical understanding

Generate a comprehensive response following the specified JSON schema.`

// renderTemplate renders a prompt template with the provided data.
func renderTemplate(tmpl string, data any) (string, error) {
	tpl, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
