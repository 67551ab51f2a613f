package services

import (
	"io"
	"net/mail"
	"regexp"
	"strings"

	"github.com/rbowen/verify-release/internal/domain/entities"
)

var (
	distURL       = regexp.MustCompile(`https://dist\.apache\.org/repos/dist/dev/[^\s<>]+`)
	votePrefix    = regexp.MustCompile(`(?i)^(re:\s*)*\[vote\]\s*`)
	mboxSeparator = "\nFrom "
)

// VoteService finds [VOTE] threads in mailing-list archives and
// tracks which ones the configured voters have already replied to.
type VoteService struct{}

// NewVoteService creates a new vote service
func NewVoteService() *VoteService {
	return &VoteService{}
}

// Message is one parsed mbox entry
type Message struct {
	Subject   string
	MessageID string
	From      string
	Body      string
}

// ParseMbox splits raw mbox content on "From " message boundaries and
// parses each entry. Unparseable entries are skipped.
func (s *VoteService) ParseMbox(content string) []Message {
	if content == "" {
		return nil
	}

	var messages []Message
	for n, part := range strings.Split(content, mboxSeparator) {
		// Splitting consumed the "From " prefix of every part but the
		// first; restore it so all parts look alike
		if n > 0 {
			part = "From " + part
		}
		// Drop the mbox "From " envelope line; net/mail expects the
		// header block to start immediately
		if strings.HasPrefix(part, "From ") {
			if i := strings.IndexByte(part, '\n'); i >= 0 {
				part = part[i+1:]
			} else {
				continue
			}
		}

		msg, err := mail.ReadMessage(strings.NewReader(part))
		if err != nil {
			continue
		}
		body, err := io.ReadAll(msg.Body)
		if err != nil {
			continue
		}
		messages = append(messages, Message{
			Subject:   msg.Header.Get("Subject"),
			MessageID: msg.Header.Get("Message-ID"),
			From:      msg.Header.Get("From"),
			Body:      string(body),
		})
	}
	return messages
}

// FindVoteThreads extracts [VOTE] threads carrying staging URLs from
// the messages. Threads one of the voter addresses has replied to are
// marked voted; showVoted selects which side of that split to return.
func (s *VoteService) FindVoteThreads(messages []Message, showVoted bool, emails []string) []entities.VoteThread {
	var order []string
	threads := make(map[string]*entities.VoteThread)

	for _, msg := range messages {
		upper := strings.ToUpper(msg.Subject)
		if strings.Contains(upper, "[VOTE]") && !strings.Contains(upper, "[RESULT]") {
			key := normalizeSubject(msg.Subject)
			thread, ok := threads[key]
			if !ok {
				thread = &entities.VoteThread{Subject: msg.Subject, MessageID: msg.MessageID}
				threads[key] = thread
				order = append(order, key)
			}
			for _, url := range distURL.FindAllString(msg.Body, -1) {
				if !containsString(thread.URLs, url) {
					thread.URLs = append(thread.URLs, url)
				}
			}
		}

		if fromMatches(msg.From, emails) && mentionsVote(msg.Body) {
			markVotedThread(threads, msg.Subject)
		}
	}

	var result []entities.VoteThread
	for _, key := range order {
		thread := threads[key]
		if len(thread.URLs) == 0 {
			continue
		}
		if thread.Voted == showVoted {
			result = append(result, *thread)
		}
	}
	return result
}

// normalizeSubject strips reply and [VOTE] prefixes so replies land in
// the same thread as the announcement.
func normalizeSubject(subject string) string {
	return strings.TrimSpace(votePrefix.ReplaceAllString(subject, ""))
}

// markVotedThread matches a reply to a thread by the leading words of
// the normalized subject.
func markVotedThread(threads map[string]*entities.VoteThread, subject string) {
	lowerSubject := strings.ToLower(subject)
	for key, thread := range threads {
		words := strings.Fields(strings.ToLower(key))
		if len(words) > 3 {
			words = words[:3]
		}
		for _, word := range words {
			if strings.Contains(lowerSubject, word) {
				thread.Voted = true
				break
			}
		}
	}
}

func fromMatches(from string, emails []string) bool {
	for _, email := range emails {
		if email != "" && strings.Contains(from, email) {
			return true
		}
	}
	return false
}

func mentionsVote(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "+1") || strings.Contains(lower, "vote")
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
