package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
	"wordtrail/internal/review"
)

// ReminderService emails users a digest of their due words via Amazon
// SES. When no from address is configured the service is disabled and
// every send is a logged no-op.
type ReminderService struct {
	client      *sesv2.Client
	profileRepo *repository.ProfileRepository
	wordRepo    *repository.WordRepository
	fromEmail   string
	fromName    string
	enabled     bool
}

// NewReminderService creates a new reminder service
func NewReminderService(awsRegion, fromEmail, fromName string, profileRepo *repository.ProfileRepository, wordRepo *repository.WordRepository) (*ReminderService, error) {
	if fromEmail == "" {
		log.Println("Reminder service disabled: REMINDER_FROM_EMAIL not configured")
		return &ReminderService{
			profileRepo: profileRepo,
			wordRepo:    wordRepo,
			enabled:     false,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Reminder service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &ReminderService{
		client:      sesv2.NewFromConfig(cfg),
		profileRepo: profileRepo,
		wordRepo:    wordRepo,
		fromEmail:   fromEmail,
		fromName:    fromName,
		enabled:     true,
	}, nil
}

// IsEnabled returns whether the reminder service is enabled
func (s *ReminderService) IsEnabled() bool {
	return s.enabled
}

// SendDueDigest emails a user the words due for review today. Nothing
// is sent when no words are due.
func (s *ReminderService) SendDueDigest(ctx context.Context, userID string, now time.Time) error {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	words, err := s.wordRepo.ListActive(userID)
	if err != nil {
		return fmt.Errorf("failed to list words: %w", err)
	}
	due := review.DueWords(words, now)
	if len(due) == 0 {
		return nil
	}

	if !s.enabled {
		log.Printf("Skipping reminder send (service disabled): %d due words for %s", len(due), profile.Email)
		return nil
	}

	subject := fmt.Sprintf("%d words are waiting for review", len(due))
	htmlBody, textBody := digestBodies(profile.Name, due)
	return s.sendEmail(ctx, profile.Email, subject, htmlBody, textBody)
}

// SendAllDigests sends a due-word digest to every user. Per-user
// failures are logged and do not stop the run.
func (s *ReminderService) SendAllDigests(ctx context.Context, now time.Time) error {
	profiles, err := s.profileRepo.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	for _, p := range profiles {
		if err := s.SendDueDigest(ctx, p.UserID, now); err != nil {
			log.Printf("Failed to send reminder to %s: %v", p.Email, err)
		}
	}
	return nil
}

// digestBodies renders the due-word digest in HTML and plain text
func digestBodies(name string, due []models.Word) (string, string) {
	var items, lines strings.Builder
	for _, w := range due {
		fmt.Fprintf(&items, "<li><strong>%s</strong> %s</li>\n", w.Text, w.Phonetic)
		fmt.Fprintf(&lines, "- %s %s\n", w.Text, w.Phonetic)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Time to Review</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>These words are due for review today:</p>
			<ul>
%s			</ul>
			<p>A few minutes now keeps them in long-term memory.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from WordTrail. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, name, items.String())

	textBody := fmt.Sprintf(`Hi %s,

These words are due for review today:

%s
A few minutes now keeps them in long-term memory.

---
This is an automated email from WordTrail. Please do not reply.
`, name, lines.String())

	return htmlBody, textBody
}

// sendEmail sends an email using Amazon SES
func (s *ReminderService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Reminder sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
