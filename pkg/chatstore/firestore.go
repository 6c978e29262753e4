package chatstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/api/option"
)

const (
	sessionsCollection = "sessions"
	messagesCollection = "messages"
)

// FirebaseEnv holds the service account settings read from the
// environment. Path wins over inline JSON.
type FirebaseEnv struct {
	CredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH"`
	CredentialsJSON string `envconfig:"FIREBASE_CREDENTIALS_JSON"`
	ProjectID       string `envconfig:"FIREBASE_PROJECT_ID"`
}

// LoadFirebaseEnv reads FirebaseEnv from the process environment.
func LoadFirebaseEnv() (FirebaseEnv, error) {
	var env FirebaseEnv
	if err := envconfig.Process("", &env); err != nil {
		return FirebaseEnv{}, fmt.Errorf("chatstore: firebase env: %w", err)
	}
	return env, nil
}

// ClientOptions turns the credentials into Google API client options.
// Without credentials the SDK falls back to application default
// credentials.
func (e FirebaseEnv) ClientOptions() []option.ClientOption {
	switch {
	case strings.TrimSpace(e.CredentialsPath) != "":
		return []option.ClientOption{option.WithCredentialsFile(e.CredentialsPath)}
	case strings.TrimSpace(e.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(e.CredentialsJSON))}
	default:
		return nil
	}
}

// FirestoreStore keeps messages under sessions/{sessionId}/messages, the
// layout the web frontend reads.
type FirestoreStore struct {
	client *firestore.Client
	limit  int
}

type firestoreMessage struct {
	SessionID string    `firestore:"sessionId"`
	Role      string    `firestore:"role"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}

// NewFirestoreStore connects through the Firebase Admin SDK. projectID
// overrides env.ProjectID when set.
func NewFirestoreStore(ctx context.Context, projectID string, env FirebaseEnv, limit int) (*FirestoreStore, error) {
	if projectID == "" {
		projectID = env.ProjectID
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, env.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("chatstore: init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("chatstore: firestore client: %w", err)
	}
	return &FirestoreStore{client: client, limit: limit}, nil
}

func (s *FirestoreStore) messages(sessionID string) *firestore.CollectionRef {
	return s.client.Collection(sessionsCollection).Doc(sessionID).Collection(messagesCollection)
}

func (s *FirestoreStore) Save(ctx context.Context, msg *Message) error {
	if err := checkMessage(msg); err != nil {
		return err
	}
	ref, _, err := s.messages(msg.SessionID).Add(ctx, firestoreMessage{
		SessionID: msg.SessionID,
		Role:      string(msg.Role),
		Text:      msg.Text,
	})
	if err != nil {
		return fmt.Errorf("chatstore: firestore add: %w", err)
	}
	msg.ID = ref.ID
	msg.CreatedAt = time.Now().UTC()
	return nil
}

func (s *FirestoreStore) Load(ctx context.Context, sessionID string) ([]Message, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	q := s.messages(sessionID).OrderBy("createdAt", firestore.Asc)
	if s.limit > 0 {
		q = s.messages(sessionID).OrderBy("createdAt", firestore.Desc).Limit(s.limit)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("chatstore: firestore query: %w", err)
	}
	out := make([]Message, 0, len(docs))
	for _, doc := range docs {
		var fm firestoreMessage
		if err := doc.DataTo(&fm); err != nil {
			return nil, fmt.Errorf("chatstore: decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, Message{
			ID:        doc.Ref.ID,
			SessionID: sessionID,
			Role:      Role(fm.Role),
			Text:      fm.Text,
			CreatedAt: fm.CreatedAt,
		})
	}
	if s.limit > 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// Clear deletes the session's messages with a bulk writer. The parent
// sessions/{id} document is never created, so nothing else is removed.
func (s *FirestoreStore) Clear(ctx context.Context, sessionID string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	refs, err := s.messages(sessionID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("chatstore: firestore list: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}
	bw := s.client.BulkWriter(ctx)
	for _, ref := range refs {
		if _, err := bw.Delete(ref); err != nil {
			bw.End()
			return fmt.Errorf("chatstore: firestore delete %s: %w", ref.ID, err)
		}
	}
	bw.End()
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
