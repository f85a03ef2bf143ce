// Package pplx talks to Perplexity's chat completions endpoint.
package pplx

// Role is the role for a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation sent to the API.
type Message struct {
	Role    Role
	Content string
}

// Request is everything needed for one completion call.
type Request struct {
	Model    string
	Messages []Message

	// MaxTokens is omitted from the payload when nil.
	MaxTokens              *int64
	Temperature            float64
	TopP                   float64
	TopK                   int
	FrequencyPenalty       float64
	ReturnCitations        bool
	ReturnImages           bool
	ReturnRelatedQuestions bool
	SearchDomainFilter     []string
	SearchRecencyFilter    string
}

// Citation is a source the answer was grounded on. Title may be empty when
// the API only returns URLs.
type Citation struct {
	Title string
	URL   string
}

// Image is an image result returned alongside the answer.
type Image struct {
	URL       string
	OriginURL string
}

// Response is the parsed result of one completion call.
type Response struct {
	Content          string
	Citations        []Citation
	RelatedQuestions []string
	Images           []Image
}
