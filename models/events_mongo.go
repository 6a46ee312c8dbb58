package models

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Alternative event store. Documents carry the same boundary encoding as the
// SQL rows (0/1 flags, one delimited participants string) so either backend
// satisfies the repository contract unchanged.
type mongoEventRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewMongoEventRepository(db *mongo.Database) EventRepository {
	return &mongoEventRepo{
		col:      db.Collection("events"),
		counters: db.Collection("counters"),
	}
}

type eventDoc struct {
	ID           int64     `bson:"id"`
	Title        string    `bson:"title"`
	StartDate    time.Time `bson:"start_date"`
	EndDate      time.Time `bson:"end_date"`
	Description  string    `bson:"description"`
	Owner        string    `bson:"owner"`
	Participants string    `bson:"participants"`
	IsMeeting    int       `bson:"is_meeting"`
	MeetingLink  string    `bson:"meeting_link"`
	IsPublic     int       `bson:"is_public"`
}

func toDoc(e *Event) eventDoc {
	return eventDoc{
		ID:           e.ID,
		Title:        e.Title,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Description:  e.Description,
		Owner:        e.Owner,
		Participants: EncodeParticipants(e.Participants),
		IsMeeting:    boolToInt(e.IsMeeting),
		MeetingLink:  e.MeetingLink,
		IsPublic:     boolToInt(e.IsPublic),
	}
}

func fromDoc(d eventDoc) Event {
	return Event{
		ID:           d.ID,
		Title:        d.Title,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Description:  d.Description,
		Owner:        d.Owner,
		Participants: DecodeParticipants(d.Participants),
		IsMeeting:    d.IsMeeting == 1,
		IsPublic:     d.IsPublic == 1,
		MeetingLink:  d.MeetingLink,
	}
}

func (r *mongoEventRepo) GetByID(id int64) (Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var d eventDoc
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, ErrNotFound
		}
		return Event{}, err
	}
	return fromDoc(d), nil
}

func (r *mongoEventRepo) ListVisible(target string) ([]Event, error) {
	// Exact membership in the delimited participants string.
	member := primitive.Regex{Pattern: `(^|,\s*)` + regexp.QuoteMeta(target) + `(\s*,|$)`}
	return r.find(bson.M{"$or": bson.A{
		bson.M{"participants": member},
		bson.M{"owner": target, "is_public": 0},
	}})
}

func (r *mongoEventRepo) ListPublic() ([]Event, error) {
	return r.find(bson.M{"is_public": 1})
}

func (r *mongoEventRepo) find(filter bson.M) ([]Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	for cur.Next(ctx) {
		var d eventDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, fromDoc(d))
	}
	return out, cur.Err()
}

func (r *mongoEventRepo) Insert(e *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	e.ID = id
	e.Participants = NormalizeParticipants(e.Owner, e.Participants)

	_, err = r.col.InsertOne(ctx, toDoc(e))
	return err
}

func (r *mongoEventRepo) Update(e *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d := toDoc(e)
	res, err := r.col.UpdateOne(ctx, bson.M{"id": e.ID}, bson.M{"$set": bson.M{
		"title":        d.Title,
		"start_date":   d.StartDate,
		"end_date":     d.EndDate,
		"description":  d.Description,
		"participants": d.Participants,
		"is_meeting":   d.IsMeeting,
		"meeting_link": d.MeetingLink,
		"is_public":    d.IsPublic,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepo) Delete(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepo) SetParticipants(id int64, participants []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"participants": EncodeParticipants(participants)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepo) DeleteAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{})
	return err
}

// nextID keeps integer event ids across backends via an atomic counter doc.
func (r *mongoEventRepo) nextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "events"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
