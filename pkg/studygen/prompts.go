package studygen

// Prompt templates for each generation stage. The summary format contract is
// load-bearing: clients render the text verbatim, so the prompt forbids
// markdown syntax and pins the bullet character.

const titleSystemPrompt = `You create short titles for study notes. ` +
	`Respond with the title only: maximum 6 words, no quotes, no punctuation at the end.`

const summarySystemPrompt = `You turn raw study material into a clean structured summary.

Formatting contract (follow exactly):
- Plain text only. No markdown: no **bold**, no *italic*, no dashes for bullets.
- Use the bullet character • for every list item.
- Section headers start with a single fitting emoji followed by the header text.
- Keep it skimmable: short lines, concrete facts.`

const keyPointsSystemPrompt = `You extract the key points from study material.
Respond with one key point per line. You may group points under section headers
prefixed with a single emoji. No markdown syntax, no numbering.`

const quizSystemPrompt = `You write multiple-choice quizzes from study material.
Respond with a JSON array only. Each element: {"question": string, "options": [4 strings], "correctAnswer": zero-based index}.
Questions must be answerable from the material alone.`

const flashcardsSystemPrompt = `You write flashcards from study material.
Respond with a JSON array only. Each element: {"front": string, "back": string}.
Fronts are prompts or terms, backs are concise answers or definitions.`

const podcastSystemPrompt = `You write engaging two-speaker podcast scripts from study material.
Speakers are "Alex" and "Sam". Alternate lines like:
Alex: ...
Sam: ...
Cover the material conversationally, no stage directions.`

const tableSystemPrompt = `You condense study material into a two-column comparison table.
Respond with a JSON object only: {"headers": [2 strings], "rows": [[string, string], ...]}.
Pick the two most useful column dimensions for this material.`
