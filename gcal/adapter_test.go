package gcal

import (
	"errors"
	"strings"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/careloop/childcare-clinic/utils"
)

func TestMeetingIDFromLink(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://meet.google.com/abc-defg-hij", "abc-defg-hij"},
		{"https://meet.google.com/abc-defg-hij/", "abc-defg-hij"},
		{"https://meet.google.com/xyz-1234-pqr", "xyz-1234-pqr"},
	}
	for _, tc := range cases {
		if got := MeetingIDFromLink(tc.link); got != tc.want {
			t.Errorf("MeetingIDFromLink(%q) = %q, want %q", tc.link, got, tc.want)
		}
	}
}

func TestMeetingIDFromEmptyLink(t *testing.T) {
	got := MeetingIDFromLink("")
	if !strings.HasPrefix(got, "meet-") {
		t.Fatalf("fallback id = %q, want meet- prefix", got)
	}
}

func TestAccessCodeFromMeetingID(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"abc-defg-hij", "ABCDEFGH"},
		{"xyz-1234-pqr", "XYZ1234P"},
		{"ab", "AB"},
	}
	for _, tc := range cases {
		if got := AccessCodeFromMeetingID(tc.id); got != tc.want {
			t.Errorf("AccessCodeFromMeetingID(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestAccessCodeFromUnusableMeetingID(t *testing.T) {
	got := AccessCodeFromMeetingID("---")
	if len(got) != 8 {
		t.Fatalf("generated code = %q, want 8 characters", got)
	}
}

func TestClassifyProviderError(t *testing.T) {
	appErr := classifyProviderError(&googleapi.Error{Code: 401, Message: "Invalid Credentials"})
	if appErr.Kind != utils.KindReauthRequired {
		t.Fatalf("401 classified as %s", appErr.Kind)
	}

	appErr = classifyProviderError(&googleapi.Error{Code: 403, Message: "Rate Limit Exceeded"})
	if appErr.Kind != utils.KindExternal {
		t.Fatalf("403 classified as %s", appErr.Kind)
	}

	appErr = classifyProviderError(errors.New("connection reset"))
	if appErr.Kind != utils.KindExternal {
		t.Fatalf("transport error classified as %s", appErr.Kind)
	}
}
