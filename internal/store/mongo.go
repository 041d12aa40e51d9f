package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps each row as a document; insertion order comes from the ObjectID
type MongoStore struct {
	client *mongo.Client
	sheets *mongo.Collection
	rows   *mongo.Collection
}

type sheetDoc struct {
	Name      string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
}

type rowDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Sheet     string             `bson:"sheet"`
	Cells     []string           `bson:"cells"`
	CreatedAt time.Time          `bson:"created_at"`
}

// NewMongo connects and pings the server
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is not set")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client: client,
		sheets: db.Collection("sheets"),
		rows:   db.Collection("sheet_rows"),
	}, nil
}

func (m *MongoStore) Backend() string { return BackendMongo }

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) Open(ctx context.Context, name string) (Sheet, error) {
	var doc sheetDoc
	err := m.sheets.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, persistErr("open sheet", err)
	}
	return &mongoSheet{rows: m.rows, name: name}, nil
}

func (m *MongoStore) Create(ctx context.Context, name string) (Sheet, error) {
	_, err := m.sheets.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$setOnInsert": bson.M{"created_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, persistErr("create sheet", err)
	}
	return &mongoSheet{rows: m.rows, name: name}, nil
}

type mongoSheet struct {
	rows *mongo.Collection
	name string
}

func (s *mongoSheet) Name() string { return s.name }

func (s *mongoSheet) AppendRow(ctx context.Context, row []string) error {
	_, err := s.rows.InsertOne(ctx, rowDoc{
		ID:        primitive.NewObjectID(),
		Sheet:     s.name,
		Cells:     row,
		CreatedAt: time.Now().UTC(),
	})
	return persistErr("append row", err)
}

func (s *mongoSheet) ReadAll(ctx context.Context) ([][]string, error) {
	cur, err := s.rows.Find(ctx, bson.M{"sheet": s.name}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, persistErr("read rows", err)
	}
	var docs []rowDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, persistErr("read rows", err)
	}
	out := make([][]string, len(docs))
	for i, d := range docs {
		out[i] = d.Cells
	}
	return out, nil
}

func (s *mongoSheet) IsInitialized(ctx context.Context) (bool, error) {
	filter := bson.M{"sheet": s.name, "cells": bson.M{"$elemMatch": bson.M{"$ne": ""}}}
	err := s.rows.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, persistErr("read header", err)
	}
	return true, nil
}

func (s *mongoSheet) Clear(ctx context.Context) error {
	_, err := s.rows.DeleteMany(ctx, bson.M{"sheet": s.name})
	return persistErr("clear sheet", err)
}
