package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ChannelScanner/internal/domain"
)

const (
	// DefaultTextBudget caps how many bytes of message text are embedded in
	// the prompt.
	DefaultTextBudget = 4000

	truncationMarker = "..."
)

const template = `Analyze the following channel message. Perform BOTH tasks and answer with a single JSON object.

Message Content:
---
%s
---

Source Channel: %s

Task 1 - project updates:
1. Find every distinct crypto project the message reports an update for and add one entry per project to the "identified_updates" list. If none, use an empty list [].
2. For EACH update choose exactly ONE "activity_type" from this list: %s.
3. For EACH update set "is_node_opportunity" to true only when the message discusses running a node, operating a validator, or joining an incentivized testnet as a node operator for that project.
4. For EACH update write a brief one-sentence "summary" of the core news for that project.
5. For EACH update list all non-referral URLs relevant to it in "key_links" and ONLY referral/invite URLs in "referral_links".
6. For EACH update record a mentioned deadline in "deadline" (free text) and any required user actions in "required_actions_summary"; use null when absent.
7. For EACH update set "is_uncertain" to true when you are not confident in the classification.

Task 2 - guide detection:
Set "is_guide" to true when the message as a whole is primarily a guide or tutorial. If true, add a one-sentence "guide_summary" and, when one project is clearly the subject, its name in "primary_subject_project".

Output ONLY the JSON object. No text before or after it.

Example (updates only):
{
  "is_guide": false,
  "identified_updates": [
    {
      "project_name": "Project Alpha",
      "activity_type": "Testnet",
      "summary": "Project Alpha opened phase 2 of its incentivized testnet.",
      "is_node_opportunity": true,
      "key_links": ["https://alpha.example/testnet"],
      "referral_links": [],
      "deadline": "August 1st",
      "required_actions_summary": "Set up a node following the docs.",
      "is_uncertain": false
    }
  ]
}

Example (guide only):
{
  "is_guide": true,
  "guide_summary": "Step-by-step wallet setup walkthrough.",
  "primary_subject_project": "Project Beta",
  "identified_updates": []
}

Example (updates and guide):
{
  "is_guide": true,
  "guide_summary": "How to qualify for the Gamma airdrop.",
  "primary_subject_project": "Project Gamma",
  "identified_updates": [
    {
      "project_name": "Project Gamma",
      "activity_type": "Airdrop Claim",
      "summary": "Project Gamma airdrop claims are live for early users.",
      "is_node_opportunity": false,
      "key_links": ["https://gamma.example/claim"],
      "referral_links": ["https://gamma.example/ref/123"],
      "deadline": null,
      "required_actions_summary": "Check eligibility and claim tokens.",
      "is_uncertain": false
    }
  ]
}`

// Builder renders the fixed-contract extraction prompt.
type Builder struct {
	budget int
}

// NewBuilder returns a Builder with the default text budget.
func NewBuilder() *Builder {
	return &Builder{budget: DefaultTextBudget}
}

// NewBuilderWithBudget overrides the text budget, mainly for tests.
func NewBuilderWithBudget(budget int) *Builder {
	return &Builder{budget: budget}
}

// Build embeds the (possibly truncated) message text and channel name into
// the instruction template.
func (b *Builder) Build(messageText, channel string) string {
	return fmt.Sprintf(template,
		Truncate(messageText, b.budget),
		channel,
		strings.Join(domain.ActivityTypes, ", "),
	)
}

// Truncate cuts text to at most budget bytes without splitting a UTF-8
// sequence, appending a marker when anything was cut.
func Truncate(text string, budget int) string {
	if budget <= 0 || len(text) <= budget {
		return text
	}

	cut := budget
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationMarker
}
