package types

// AdviceEntry is a canned answer used when the remote advisor is unavailable.
type AdviceEntry struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Text    string `yaml:"text" json:"text"`
}
