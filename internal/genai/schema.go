package genai

import (
	"encoding/json"
	"fmt"
)

// questionsSchema returns the response schema constraining the provider to a
// JSON object with a single "questions" array sized count..count.
func questionsSchema(count int) json.RawMessage {
	s := fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "question": {"type": "string", "description": "A technical interview question"}
        },
        "required": ["question"],
        "additionalProperties": false
      },
      "minItems": %d,
      "maxItems": %d
    }
  },
  "required": ["questions"],
  "additionalProperties": false
}`, count, count)
	return json.RawMessage(s)
}

const explanationSchemaJSON = `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "description": "The question or topic being explained"},
    "explanation": {"type": "string", "description": "Detailed technical explanation (200-400 words)"},
    "keyPoints": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 3,
      "maxItems": 5
    },
    "examples": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 2,
      "maxItems": 3
    },
    "bestPractices": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 2,
      "maxItems": 3
    }
  },
  "required": ["title", "explanation", "keyPoints", "examples", "bestPractices"],
  "additionalProperties": false
}`

// localQuestionsSchemaJSON is the lenient shape check applied to parsed
// output before coercion. Size constraints are enforced only on the request
// side; a short-but-valid list is filtered, not rejected.
const localQuestionsSchemaJSON = `{
  "type": "object",
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "question": {"type": "string"}
        },
        "required": ["question"]
      }
    }
  },
  "required": ["questions"]
}`
