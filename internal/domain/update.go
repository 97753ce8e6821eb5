package domain

import "encoding/json"

// MediaPlaceholder marks feed messages that carried no usable text.
const MediaPlaceholder = "[Media message]"

// GuideActivityType is the activity assigned to synthesized guide records.
const GuideActivityType = "Guide/Tutorial"

// GuideProjectPlaceholder names guide records whose message had no clear
// primary subject project.
const GuideProjectPlaceholder = "General Guide"

// ActivityTypes is the closed taxonomy the completion service must classify
// each update against.
var ActivityTypes = []string{
	"Testnet",
	"Airdrop Check",
	"Airdrop Claim",
	"Quest/Task",
	"Waitlist/Form",
	"Partnership",
	"Protocol Upgrade",
	"Token Launch",
	"Token Sale/IDO",
	"Governance Vote",
	"Security Alert",
	"New Project Announcement",
	GuideActivityType,
	"Community/Social",
	"Funding",
	"General News/Update",
	"Market Commentary",
	"Noise/Other",
}

// RawMessage is a single feed message handed to the pipeline. Link doubles
// as the idempotency key for everything persisted from this message.
// Timestamp is heterogeneous: sources deliver time.Time values, ISO-8601
// strings, or spreadsheet serial-day numbers.
type RawMessage struct {
	Text      string
	Channel   string
	Timestamp any
	Link      string
}

// UpdateItem is one project update as reported by the completion service.
type UpdateItem struct {
	ProjectName       string   `json:"project_name"`
	ActivityType      string   `json:"activity_type"`
	Summary           string   `json:"summary"`
	IsNodeOpportunity bool     `json:"is_node_opportunity"`
	KeyLinks          []string `json:"key_links"`
	ReferralLinks     []string `json:"referral_links"`
	Deadline          *string  `json:"deadline"`
	RequiredActions   *string  `json:"required_actions_summary"`
	IsUncertain       bool     `json:"is_uncertain"`
}

// ExtractionResult is the validated envelope produced from one completion
// response. Updates keeps the items as raw JSON: structural validation
// happens once here, per-item field tolerance is the assembler's job.
type ExtractionResult struct {
	IsGuide               bool
	GuideSummary          string
	PrimarySubjectProject string
	Updates               []json.RawMessage
}

// PersistedRecord is one row of the shared store, matching the downstream
// consumer's schema exactly.
type PersistedRecord struct {
	ProjectName       string
	ActivityType      string
	Summary           string
	SourceChannel     string
	SourceMessageLink string
	MessageTimestamp  string
	FullMessageText   string
	NeedsReview       bool
}
