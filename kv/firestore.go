package kv

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const firestoreValueField = "value"

// FirestoreConfig names the project and collection values are kept in.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS, or the emulator
// when FIRESTORE_EMULATOR_HOST is set.
type FirestoreConfig struct {
	ProjectID  string
	Collection string
}

// FirestoreStore keeps each value in its own document.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestore(ctx context.Context, cfg FirestoreConfig) (*FirestoreStore, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore: project id is required")
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "recipebox"
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) doc(key string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(encodeKey(key))
}

func (s *FirestoreStore) Get(ctx context.Context, key string) (string, bool, error) {
	snap, err := s.doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("firestore: get: %w", err)
	}

	raw, err := snap.DataAt(firestoreValueField)
	if err != nil {
		return "", false, fmt.Errorf("firestore: read field: %w", err)
	}
	value, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("firestore: field %q is %T, not a string", firestoreValueField, raw)
	}
	return value, true, nil
}

func (s *FirestoreStore) Set(ctx context.Context, key, value string) error {
	_, err := s.doc(key).Set(ctx, map[string]interface{}{firestoreValueField: value})
	if err != nil {
		return fmt.Errorf("firestore: set: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Remove(ctx context.Context, key string) error {
	if _, err := s.doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("firestore: delete: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
