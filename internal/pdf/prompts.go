package pdf

import "fmt"

const analyzeSystemPrompt = `You are a study assistant. You receive a document and
produce page-by-page explanations a student can learn from. Respond with JSON
only: an array of objects {"number": int, "title": string, "content": string,
"explanation": string}, one per page, in page order.`

func quizPrompt(content string, numQuestions int) string {
	return fmt.Sprintf(`Generate exactly %d multiple-choice questions from the
document below. Respond with JSON only: an array of objects
{"question": string, "options": [string, string, string, string],
"answer": int, "explanation": string} where answer is the zero-based index
of the correct option.

Document:
%s`, numQuestions, content)
}

func flashcardPrompt(content string, numCards int) string {
	return fmt.Sprintf(`Generate exactly %d flashcards from the document below.
Respond with JSON only: an array of objects {"front": string, "back": string}.

Document:
%s`, numCards, content)
}

func theoryPrompt(content string, numQuestions int) string {
	return fmt.Sprintf(`Generate exactly %d open-ended theory questions from the
document below. Respond with JSON only: an array of objects
{"question": string, "guideline": string} where guideline describes what a
complete answer covers.

Document:
%s`, numQuestions, content)
}

func verificationPrompt(question, guideline, answer string) string {
	return fmt.Sprintf(`Grade the student answer against the question and marking
guideline. Respond with JSON only:
{"score": int, "max_score": 10, "feedback": string}.

Question: %s
Guideline: %s
Student answer: %s`, question, guideline, answer)
}

func documentPrompt(topic, style string) string {
	return fmt.Sprintf(`Write a complete study document on the topic below.
Respond with JSON only: {"title": string, "sections": [{"heading": string,
"body": string}]}. Style: %s.

Topic: %s`, style, topic)
}
