package entities

// VoteThread represents a [VOTE] thread discovered on a project's dev
// mailing list.
type VoteThread struct {
	Subject   string
	MessageID string
	// URLs are the dist.apache.org staging URLs mentioned anywhere in
	// the thread, deduplicated in order of first appearance.
	URLs []string
	// Voted is true when one of the configured voter addresses has
	// already replied to the thread.
	Voted bool
}
