package models

import (
	"database/sql"
	"errors"
	"strings"
)

type sqlEventRepo struct{ db *sql.DB }

func NewSQLEventRepository(db *sql.DB) EventRepository { return &sqlEventRepo{db} }

const eventColumns = `id, title, start_date, end_date, description, owner, participants, is_meeting, meeting_link, is_public`

// Membership test against the stored ", "-delimited participant column.
// Normalizing the separators to bare commas keeps the match exact instead of
// a substring LIKE that would also hit "alice2" for "alice". The username is
// bound pre-escaped (escapeLike) so %/_ in it are literals, not wildcards.
const participantMatch = `(',' || replace(participants, ', ', ',') || ',') LIKE ('%,' || $1 || ',%')`

// escapeLike neutralizes LIKE metacharacters in a value bound into a
// pattern. Postgres treats backslash as the default escape character.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var (
		e            Event
		participants string
		isMeeting    int
		isPublic     int
	)
	err := row.Scan(&e.ID, &e.Title, &e.StartDate, &e.EndDate, &e.Description,
		&e.Owner, &participants, &isMeeting, &e.MeetingLink, &isPublic)
	if err != nil {
		return Event{}, err
	}
	e.Participants = DecodeParticipants(participants)
	e.IsMeeting = isMeeting == 1
	e.IsPublic = isPublic == 1
	return e, nil
}

func (r *sqlEventRepo) GetByID(id int64) (Event, error) {
	e, err := scanEvent(r.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return e, err
}

func (r *sqlEventRepo) ListVisible(target string) ([]Event, error) {
	return r.queryEvents(
		`SELECT `+eventColumns+` FROM events WHERE `+participantMatch+` OR (owner = $2 AND is_public = 0)`,
		escapeLike(target), target,
	)
}

func (r *sqlEventRepo) ListPublic() ([]Event, error) {
	return r.queryEvents(`SELECT ` + eventColumns + ` FROM events WHERE is_public = 1`)
}

func (r *sqlEventRepo) queryEvents(query string, args ...any) ([]Event, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *sqlEventRepo) Insert(e *Event) error {
	e.Participants = NormalizeParticipants(e.Owner, e.Participants)
	return r.db.QueryRow(
		`INSERT INTO events (title, start_date, end_date, description, owner, participants, is_meeting, meeting_link, is_public)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		e.Title, e.StartDate, e.EndDate, e.Description, e.Owner,
		EncodeParticipants(e.Participants), boolToInt(e.IsMeeting), e.MeetingLink, boolToInt(e.IsPublic),
	).Scan(&e.ID)
}

func (r *sqlEventRepo) Update(e *Event) error {
	res, err := r.db.Exec(
		`UPDATE events SET title=$1, start_date=$2, end_date=$3, description=$4, participants=$5, is_meeting=$6, meeting_link=$7, is_public=$8 WHERE id=$9`,
		e.Title, e.StartDate, e.EndDate, e.Description,
		EncodeParticipants(e.Participants), boolToInt(e.IsMeeting), e.MeetingLink, boolToInt(e.IsPublic),
		e.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqlEventRepo) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqlEventRepo) SetParticipants(id int64, participants []string) error {
	res, err := r.db.Exec(`UPDATE events SET participants=$1 WHERE id=$2`,
		EncodeParticipants(participants), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqlEventRepo) DeleteAll() error {
	_, err := r.db.Exec(`DELETE FROM events`)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
