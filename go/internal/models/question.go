package models

// Question is polymorphic over game type. Trivia questions use Prompt,
// Options, CorrectAnswer and Category; would-you-rather questions use
// OptionA/OptionB; who's-more-likely questions use Prompt only.
type Question struct {
	Prompt        string   `json:"prompt,omitempty"`
	Options       []string `json:"options,omitempty"`        // trivia
	CorrectAnswer string   `json:"correct_answer,omitempty"` // trivia
	Category      string   `json:"category,omitempty"`       // trivia
	OptionA       string   `json:"option_a,omitempty"`       // would_you_rather
	OptionB       string   `json:"option_b,omitempty"`       // would_you_rather
}
