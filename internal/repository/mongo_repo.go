package repository

import (
	"context"
	"errors"
	"fmt"

	"todo_webapp/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mongoTask struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	Deadline  string             `bson:"deadline"`
}

// MongoTaskRepository stores one task per document; ids are ObjectID hex strings.
type MongoTaskRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoTaskRepository(ctx context.Context, uri, database, collection string) (*MongoTaskRepository, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &MongoTaskRepository{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (r *MongoTaskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	// ObjectIDs grow with insertion time, so _id order is insertion order
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	res := []domain.Task{}
	for cur.Next(ctx) {
		var doc mongoTask
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		res = append(res, domain.Task{
			ID:        doc.ID.Hex(),
			Text:      doc.Text,
			Completed: doc.Completed,
			Deadline:  doc.Deadline,
		})
	}
	return res, cur.Err()
}

func (r *MongoTaskRepository) Create(ctx context.Context, d domain.Draft) (string, error) {
	res, err := r.coll.InsertOne(ctx, mongoTask{Text: d.Text, Deadline: d.Deadline})
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("create task: unexpected id type")
	}
	return oid.Hex(), nil
}

func (r *MongoTaskRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	return r.set(ctx, id, bson.M{"completed": completed})
}

func (r *MongoTaskRepository) SetFields(ctx context.Context, id, text, deadline string) error {
	return r.set(ctx, id, bson.M{"text": text, "deadline": deadline})
}

func (r *MongoTaskRepository) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFound(id)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (r *MongoTaskRepository) Remove(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFound(id)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (r *MongoTaskRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoTaskRepository) Close() error {
	return r.client.Disconnect(context.Background())
}
