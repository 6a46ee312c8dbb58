package services

import (
	"time"

	"github.com/google/uuid"

	"calendarapi/models"
	"calendarapi/scheduling"
)

// EventInput is the typed candidate record crossing the service boundary.
// ID == 0 means create; a non-zero ID edits an existing event.
type EventInput struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Description  string    `json:"description"`
	Participants []string  `json:"participants"`
	IsMeeting    bool      `json:"is_meeting"`
	MeetingLink  string    `json:"meeting_link"`
	IsPublic     bool      `json:"is_public"`
	// ConfirmConflicts forces the save after a pending-conflict result.
	ConfirmConflicts bool `json:"confirm_conflicts"`
}

// SubmitResult is either a persisted event or a pending decision: when
// Conflicts is non-empty nothing was written and the caller must re-submit
// with ConfirmConflicts set to force the save.
type SubmitResult struct {
	Event     models.Event   `json:"event"`
	Conflicts []models.Event `json:"conflicts,omitempty"`
}

func (r SubmitResult) Pending() bool { return len(r.Conflicts) > 0 }

type EventService struct {
	events models.EventRepository
}

func NewEventService(events models.EventRepository) *EventService {
	return &EventService{events: events}
}

// Submit validates, checks for overlaps against the caller's own calendar,
// and persists the candidate. Edits are owner-only and never change the
// owner.
func (s *EventService) Submit(caller models.Identity, in EventInput) (SubmitResult, error) {
	if in.Title == "" {
		return SubmitResult{}, models.ErrEmptyTitle
	}
	// Equal start/end is a zero-duration event, which is accepted.
	if in.EndDate.Before(in.StartDate) {
		return SubmitResult{}, models.ErrInvalidRange
	}

	owner := caller.Username
	if in.ID != 0 {
		existing, err := s.events.GetByID(in.ID)
		if err != nil {
			return SubmitResult{}, err
		}
		if existing.Owner != caller.Username {
			return SubmitResult{}, models.ErrForbidden
		}
		owner = existing.Owner
	}

	visible, err := s.events.ListVisible(caller.Username)
	if err != nil {
		return SubmitResult{}, err
	}

	conflicts := scheduling.Overlaps(in.StartDate, in.EndDate, in.ID, visible)
	if len(conflicts) > 0 && !in.ConfirmConflicts {
		return SubmitResult{Conflicts: conflicts}, nil
	}

	participants := models.NormalizeParticipants(owner, in.Participants)

	// A confirmed create retried with the identical payload must not insert
	// a second record. Only a full match counts as a retry; a candidate
	// differing in any caller-controlled attribute is a new save.
	if in.ID == 0 {
		for _, v := range visible {
			if isRetryOf(v, in, owner, participants) {
				return SubmitResult{Event: v}, nil
			}
		}
	}

	link := in.MeetingLink
	if in.IsMeeting && link == "" {
		link = newMeetingLink()
	}
	if !in.IsMeeting {
		link = ""
	}

	e := models.Event{
		ID:           in.ID,
		Title:        in.Title,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Description:  in.Description,
		Owner:        owner,
		Participants: participants,
		IsMeeting:    in.IsMeeting,
		MeetingLink:  link,
		IsPublic:     in.IsPublic,
	}

	if in.ID == 0 {
		err = s.events.Insert(&e)
	} else {
		err = s.events.Update(&e)
	}
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Event: e}, nil
}

// Delete removes an event; owner only.
func (s *EventService) Delete(id int64, caller models.Identity) error {
	e, err := s.events.GetByID(id)
	if err != nil {
		return err
	}
	if e.Owner != caller.Username {
		return models.ErrForbidden
	}
	return s.events.Delete(id)
}

// Join adds username to a public event's participants. Joining an event the
// user is already part of is a no-op, public or not.
func (s *EventService) Join(id int64, username string) error {
	e, err := s.events.GetByID(id)
	if err != nil {
		return err
	}
	if e.HasParticipant(username) {
		return nil
	}
	if !e.IsPublic {
		return models.ErrForbidden
	}
	return s.events.SetParticipants(id, append(e.Participants, username))
}

// Leave removes username from the participants. Leaving an event the user is
// not part of is a no-op. The owner may not leave their own event; deleting
// it is the supported way out, which keeps the owner always a participant.
func (s *EventService) Leave(id int64, username string) error {
	e, err := s.events.GetByID(id)
	if err != nil {
		return err
	}
	if username == e.Owner {
		return models.ErrForbidden
	}
	if !e.HasParticipant(username) {
		return nil
	}
	remaining := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p != username {
			remaining = append(remaining, p)
		}
	}
	return s.events.SetParticipants(id, remaining)
}

// ListVisible returns the calendar of viewedUser, defaulting to the caller.
func (s *EventService) ListVisible(caller models.Identity, viewedUser string) ([]models.Event, error) {
	target := viewedUser
	if target == "" {
		target = caller.Username
	}
	return s.events.ListVisible(target)
}

func (s *EventService) ListPublic() ([]models.Event, error) {
	return s.events.ListPublic()
}

// isRetryOf reports whether a stored event matches the candidate in every
// attribute the caller controls. Participants are compared after
// normalization; a generated meeting link matches any stored link, since a
// retry of a link-less meeting cannot reproduce the random value.
func isRetryOf(v models.Event, in EventInput, owner string, participants []string) bool {
	if v.Owner != owner || v.Title != in.Title || v.Description != in.Description {
		return false
	}
	if !v.StartDate.Equal(in.StartDate) || !v.EndDate.Equal(in.EndDate) {
		return false
	}
	if v.IsMeeting != in.IsMeeting || v.IsPublic != in.IsPublic {
		return false
	}
	if in.IsMeeting && in.MeetingLink != "" && v.MeetingLink != in.MeetingLink {
		return false
	}
	if len(v.Participants) != len(participants) {
		return false
	}
	for i := range participants {
		if v.Participants[i] != participants[i] {
			return false
		}
	}
	return true
}

func newMeetingLink() string {
	return "https://meet.jit.si/" + uuid.NewString()
}
