package llm

type LLMSettings struct {
	model       string  // model name
	temperature float64 // randomness (0.0 to 1.0)
	maxTokens   int     // maximum tokens to generate
	system      string  // system prompt
}

type LLMOption func(*LLMSettings)

func WithLLMModel(name string) LLMOption {
	return func(s *LLMSettings) { s.model = name }
}

func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

// Message is one conversation turn made of text and image blocks.
type Message struct {
	Role    string         `json:"role"` // "user" or "assistant"
	Content []ContentBlock `json:"content"`
}

type ContentBlock struct {
	Type   string       `json:"type"` // "text" or "image"
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

type ImageSource struct {
	Type      string `json:"type"` // "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// ImageBlock wraps base64-encoded image data.
func ImageBlock(mediaType, base64Data string) ContentBlock {
	return ContentBlock{
		Type:   "image",
		Source: &ImageSource{Type: "base64", MediaType: mediaType, Data: base64Data},
	}
}

func UserMessage(blocks ...ContentBlock) Message {
	return Message{Role: "user", Content: blocks}
}
