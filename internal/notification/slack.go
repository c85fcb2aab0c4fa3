package notification

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Block Kit limits on text object length, in characters.
const (
	maxHeaderText  = 150
	maxSectionText = 3000
)

// slackAPI is the subset of *slack.Client used to deliver direct messages.
type slackAPI interface {
	GetUserByEmailContext(ctx context.Context, email string) (*slack.User, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackSender sends assignment messages as Slack direct messages, resolving the recipient by email.
type SlackSender struct {
	api slackAPI
}

// NewSlackSender creates a sender using the given bot token.
func NewSlackSender(token string) (*SlackSender, error) {
	if token == "" {
		return nil, goerr.New("slack bot token is required")
	}
	return &SlackSender{api: slack.New(token)}, nil
}

func (s *SlackSender) SendAssignment(ctx context.Context, msg AssignmentMessage) error {
	user, err := s.api.GetUserByEmailContext(ctx, msg.To)
	if err != nil {
		return goerr.Wrap(err, "failed to look up slack user", goerr.V("record_id", msg.RecordID))
	}

	_, _, err = s.api.PostMessageContext(ctx, user.ID,
		slack.MsgOptionText(fmt.Sprintf("Maintenance on %s was assigned to you", msg.MachineName), false),
		slack.MsgOptionBlocks(assignmentBlocks(msg)...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post slack message",
			goerr.V("record_id", msg.RecordID), goerr.V("slack_user", user.ID))
	}
	return nil
}

func assignmentBlocks(msg AssignmentMessage) []slack.Block {
	greeting := "Hi"
	if msg.Name != "" {
		greeting = "Hi " + msg.Name
	}

	header := truncate("New maintenance assignment: "+msg.MachineName, maxHeaderText)
	body := truncate(fmt.Sprintf("%s, you are now responsible for record #%d.\n>%s", greeting, msg.RecordID, msg.ProblemDescription), maxSectionText)

	return []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, header, true, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, body, false, false),
			[]*slack.TextBlockObject{
				slack.NewTextBlockObject(slack.MarkdownType, "*Priority*\n"+msg.Priority, false, false),
				slack.NewTextBlockObject(slack.MarkdownType, "*Category*\n"+msg.Category, false, false),
				slack.NewTextBlockObject(slack.MarkdownType, "*Shift*\n"+msg.Shift, false, false),
			},
			nil,
		),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf(":link: <%s|Open record>", msg.ActionURL), false, false),
		),
	}
}

// truncate shortens s to at most limit characters, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}
