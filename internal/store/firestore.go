package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oklog/ulid/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rcliao/auto-memory/internal/model"
)

// DefaultCollection is the Firestore collection holding lore entries.
const DefaultCollection = "lore_entries"

// FirestoreStore implements RecordStore on a Firestore collection, one
// document per entry keyed by entry id.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

type entryDoc struct {
	Namespace      string     `firestore:"namespace"`
	Comment        string     `firestore:"comment"`
	Keywords       []string   `firestore:"keywords"`
	Content        string     `firestore:"content"`
	CreatedAt      time.Time  `firestore:"created_at"`
	AccessCount    int        `firestore:"access_count"`
	LastAccessedAt *time.Time `firestore:"last_accessed_at"`
}

// NewFirestoreStore connects to databaseID of projectID.
func NewFirestoreStore(ctx context.Context, projectID, databaseID, collection string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project is required")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *FirestoreStore) ListByNamespace(ctx context.Context, ns string) ([]model.Entry, error) {
	docs, err := s.col().Where("namespace", "==", ns).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "list firestore entries", goerr.V("ns", ns))
	}

	entries := make([]model.Entry, 0, len(docs))
	for _, doc := range docs {
		var d entryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "decode firestore entry", goerr.V("id", doc.Ref.ID))
		}
		entries = append(entries, d.toEntry(doc.Ref.ID))
	}

	// Ordering in Go avoids a composite index on (namespace, created_at).
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *FirestoreStore) Create(ctx context.Context, e model.Entry) (*model.Entry, error) {
	if strings.TrimSpace(e.Content) == "" {
		return nil, goerr.New("entry content is empty", goerr.V("ns", e.Namespace))
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	e.AccessCount = 0
	e.LastAccessedAt = nil

	if _, err := s.col().Doc(e.ID).Create(ctx, fromEntry(e)); err != nil {
		return nil, goerr.Wrap(err, "create firestore entry", goerr.V("id", e.ID))
	}
	return &e, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	ref := s.col().Doc(id)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "delete firestore entry", goerr.V("id", id))
		}
		return goerr.Wrap(err, "delete firestore entry", goerr.V("id", id))
	}
	return nil
}

func (s *FirestoreStore) DeleteByNamespace(ctx context.Context, ns string) (int, error) {
	refs, err := s.col().Where("namespace", "==", ns).Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "list firestore namespace", goerr.V("ns", ns))
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, doc := range refs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, goerr.Wrap(err, "queue firestore delete", goerr.V("id", doc.Ref.ID))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	if firstErr != nil {
		return deleted, goerr.Wrap(firstErr, "delete firestore namespace",
			goerr.V("ns", ns), goerr.V("deleted", deleted))
	}
	return deleted, nil
}

// Touch bumps access tracking for ids.
func (s *FirestoreStore) Touch(ctx context.Context, ids []string, at time.Time) error {
	for _, id := range ids {
		_, err := s.col().Doc(id).Update(ctx, []firestore.Update{
			{Path: "access_count", Value: firestore.Increment(1)},
			{Path: "last_accessed_at", Value: at.UTC()},
		})
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "touch firestore entry", goerr.V("id", id))
		}
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func fromEntry(e model.Entry) entryDoc {
	return entryDoc{
		Namespace:      e.Namespace,
		Comment:        e.Comment,
		Keywords:       e.Keywords,
		Content:        e.Content,
		CreatedAt:      e.CreatedAt,
		AccessCount:    e.AccessCount,
		LastAccessedAt: e.LastAccessedAt,
	}
}

func (d entryDoc) toEntry(id string) model.Entry {
	return model.Entry{
		ID:             id,
		Namespace:      d.Namespace,
		Comment:        d.Comment,
		Keywords:       d.Keywords,
		Content:        d.Content,
		CreatedAt:      d.CreatedAt,
		AccessCount:    d.AccessCount,
		LastAccessedAt: d.LastAccessedAt,
	}
}

var (
	_ RecordStore = (*FirestoreStore)(nil)
	_ Toucher     = (*FirestoreStore)(nil)
)
