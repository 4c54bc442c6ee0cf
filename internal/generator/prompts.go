package generator

import "github.com/tmc/langchaingo/prompts"

const systemPrompt = "You are a professional content writer. Follow the " +
	"requested structure exactly and write in the voice described by the " +
	"tone profile and style samples when they are provided."

var outlinePrompt = prompts.NewPromptTemplate(
	`Plan an article about "{{.topic}}".{{.secondary}}
Propose between 3 and 6 section headings that cover the subject well.
Respond with one heading per line prefixed with "- " and nothing else.

Reference material summary:
{{.sources}}`,
	[]string{"topic", "secondary", "sources"},
)

var sectionPrompt = prompts.NewPromptTemplate(
	`Write the "{{.section}}" section of an article about "{{.topic}}".
Target 150-250 words of flowing prose. Do not repeat the section heading.
{{.tone}}{{.style}}
Reference material:
{{.sources}}`,
	[]string{"section", "topic", "tone", "style", "sources"},
)

var titlePrompt = prompts.NewPromptTemplate(
	`Article topic: {{.topic}}.
Suggest one compelling, specific title for the finished article below.
Respond with the title only, no quotes.

{{.article}}`,
	[]string{"topic", "article"},
)

var samplePrompt = prompts.NewPromptTemplate(
	`Here is a writing sample that defines the author's voice:

{{.sample}}
{{.tone}}
Write variation {{.variation}} of {{.count}}: a new passage of roughly
{{.length}} words in exactly the same voice{{.topic}}.{{.feedback}}
Respond with the passage only.`,
	[]string{"sample", "tone", "variation", "count", "length", "topic", "feedback"},
)
