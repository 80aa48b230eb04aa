package gcal

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/careloop/childcare-clinic/utils"
)

const requestTimeout = 15 * time.Second

// EventDetails describes the calendar event to create for a consultation.
type EventDetails struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
}

// MeetEvent is the normalized result of a successful event creation.
type MeetEvent struct {
	EventID    string
	MeetLink   string
	MeetingID  string
	AccessCode string
}

// CreateMeetEvent creates a calendar event with an attached Google Meet
// conference and normalizes the provider response. A single attempt is made;
// retrying is the caller's decision.
func CreateMeetEvent(ctx context.Context, token *oauth2.Token, details EventDetails) (*MeetEvent, *utils.Error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	client := OAuthConfig().Client(ctx, token)
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, utils.External("Unable to create calendar service", err)
	}

	attendees := make([]*calendar.EventAttendee, 0, len(details.Attendees))
	for _, email := range details.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	event := &calendar.Event{
		Summary:     details.Summary,
		Description: details.Description,
		Start: &calendar.EventDateTime{
			DateTime: details.Start.Format(time.RFC3339),
			TimeZone: details.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: details.End.Format(time.RFC3339),
			TimeZone: details.TimeZone,
		},
		Attendees: attendees,
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: utils.GenerateRequestID("meet", time.Now().UnixMilli()),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := svc.Events.Insert("primary", event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyProviderError(err)
	}

	meetingID := MeetingIDFromLink(created.HangoutLink)
	return &MeetEvent{
		EventID:    created.Id,
		MeetLink:   created.HangoutLink,
		MeetingID:  meetingID,
		AccessCode: AccessCodeFromMeetingID(meetingID),
	}, nil
}

// classifyProviderError maps Google API failures onto the internal taxonomy.
// An auth failure means the stored tokens are unusable and the doctor must
// re-consent; everything else is surfaced as an external-service failure.
func classifyProviderError(err error) *utils.Error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 401 {
		return utils.ReauthRequired("Google authorization expired. Please re-authorize.")
	}
	return utils.External("Failed to create Google Meet", err)
}

// MeetingIDFromLink derives the internal meeting id from the Meet link's
// last path segment, falling back to a timestamp-based id when the provider
// omits the link.
func MeetingIDFromLink(link string) string {
	if link != "" {
		parts := strings.Split(strings.TrimRight(link, "/"), "/")
		if last := parts[len(parts)-1]; last != "" {
			return last
		}
	}
	return "meet-" + time.Now().UTC().Format("20060102150405")
}

// AccessCodeFromMeetingID reduces a meeting id to a short uppercase code.
func AccessCodeFromMeetingID(meetingID string) string {
	var b strings.Builder
	for _, r := range meetingID {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 8 {
			break
		}
	}
	if b.Len() == 0 {
		return utils.GenerateAccessCode(8)
	}
	return strings.ToUpper(b.String())
}
