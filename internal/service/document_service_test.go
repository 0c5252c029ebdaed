package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/repository/contract"
	"ai-learning-partner-be/internal/repository/specification"
	"ai-learning-partner-be/pkg/youtube"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test doubles ---

type fakeDocumentRepo struct {
	docs []*entity.Document
}

func (r *fakeDocumentRepo) Create(ctx context.Context, document *entity.Document) error {
	r.docs = append(r.docs, document)
	return nil
}
func (r *fakeDocumentRepo) Update(ctx context.Context, document *entity.Document) error { return nil }
func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error              { return nil }

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, d := range r.docs {
		if documentMatches(d, specs) {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range r.docs {
		if documentMatches(d, specs) {
			out = append(out, d)
		}
	}
	return out, nil
}

func documentMatches(d *entity.Document, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch s := sp.(type) {
		case specification.UserOwnedBy:
			if d.UserId != s.UserID {
				return false
			}
		case specification.ByDocumentName:
			if d.Name != s.Name {
				return false
			}
		case specification.ByID:
			if d.Id != s.ID {
				return false
			}
		}
	}
	return true
}

type fakeChunkRepo struct {
	created []*entity.DocumentChunk
	// scored is what SearchSimilar hands back, regardless of the query.
	scored []*contract.ScoredChunk
}

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.created = append(r.created, chunks...)
	return nil
}
func (r *fakeChunkRepo) Update(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }
func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}
func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return nil, nil
}
func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.created)), nil
}
func (r *fakeChunkRepo) SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, documentName string) ([]*contract.ScoredChunk, error) {
	return r.scored, nil
}

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeTranscripts struct {
	transcript string
	err        error
}

func (f *fakeTranscripts) Transcript(ctx context.Context, videoID string) (string, error) {
	return f.transcript, f.err
}

type fakeObjectStore struct {
	objects map[string][]byte
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return key, nil
}

func (s *fakeObjectStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("object not found")
	}
	return "https://storage.test/" + key, nil
}

func newTestDocumentService(transcripts TranscriptFetcher, store ObjectStore) (IDocumentService, *fakeUow, *fakePublisher) {
	uow := newFakeUow()
	pub := &fakePublisher{}
	svc := NewDocumentService(uow, pub, store, transcripts, noopLogger{}, 1000, 100)
	return svc, uow, pub
}

// --- Tests ---

func TestUploadDuplicateNameIsAcknowledged(t *testing.T) {
	svc, uow, pub := newTestDocumentService(&fakeTranscripts{}, nil)
	userId := uuid.New()

	existing := &entity.Document{
		Id:     uuid.New(),
		UserId: userId,
		Name:   "biology.pdf",
		Status: entity.DocumentStatusReady,
	}
	uow.documents.docs = append(uow.documents.docs, existing)

	// The bytes are never parsed on the duplicate path.
	res, err := svc.Upload(context.Background(), userId, "biology.pdf", []byte("not a real pdf"))
	require.NoError(t, err)
	assert.True(t, res.AlreadyExists)
	assert.Equal(t, existing.Id, res.Id)
	assert.Equal(t, entity.DocumentStatusReady, res.Status)

	// Exactly one document and one chunk set remain; nothing was re-queued.
	assert.Len(t, uow.documents.docs, 1)
	assert.Empty(t, uow.chunks.created)
	assert.Empty(t, pub.payloads)
}

func TestUploadSameNameDifferentUser(t *testing.T) {
	svc, uow, _ := newTestDocumentService(&fakeTranscripts{}, nil)

	uow.documents.docs = append(uow.documents.docs, &entity.Document{
		Id:     uuid.New(),
		UserId: uuid.New(),
		Name:   "biology.pdf",
		Status: entity.DocumentStatusReady,
	})

	// Another user's identically-named document is not a duplicate; the
	// upload proceeds and fails later on the unparseable bytes.
	_, err := svc.Upload(context.Background(), uuid.New(), "biology.pdf", []byte("not a real pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read pdf")
}

func TestUploadValidation(t *testing.T) {
	svc, _, _ := newTestDocumentService(&fakeTranscripts{}, nil)
	userId := uuid.New()

	_, err := svc.Upload(context.Background(), userId, "  ", []byte("x"))
	assert.Error(t, err)

	_, err = svc.Upload(context.Background(), userId, "a.pdf", nil)
	assert.Error(t, err)
}

func TestIngestYouTube(t *testing.T) {
	transcripts := &fakeTranscripts{transcript: "plants absorb carbon dioxide and release oxygen"}
	svc, uow, pub := newTestDocumentService(transcripts, nil)
	userId := uuid.New()

	res, err := svc.IngestYouTube(context.Background(), userId, "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "youtube-dQw4w9WgXcQ", res.Name)
	assert.Equal(t, entity.DocumentStatusProcessing, res.Status)
	assert.False(t, res.AlreadyExists)

	require.Len(t, uow.documents.docs, 1)
	require.NotEmpty(t, uow.chunks.created)
	assert.Equal(t, res.Id, uow.chunks.created[0].DocumentId)

	// The embedding consumer was handed the new document.
	require.Len(t, pub.payloads, 1)
	var msg dto.PublishEmbedDocumentMessage
	require.NoError(t, json.Unmarshal(pub.payloads[0], &msg))
	assert.Equal(t, res.Id, msg.DocumentId)

	// Re-submitting the same video is deduplicated by name.
	res2, err := svc.IngestYouTube(context.Background(), userId, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.True(t, res2.AlreadyExists)
	assert.Equal(t, res.Id, res2.Id)
	assert.Len(t, uow.documents.docs, 1)
	assert.Len(t, pub.payloads, 1)
}

func TestIngestYouTubeInvalidURL(t *testing.T) {
	svc, _, _ := newTestDocumentService(&fakeTranscripts{}, nil)

	_, err := svc.IngestYouTube(context.Background(), uuid.New(), "https://example.org/video")
	assert.ErrorIs(t, err, youtube.ErrInvalidURL)
}

func TestIngestYouTubeNoTranscript(t *testing.T) {
	svc, uow, pub := newTestDocumentService(&fakeTranscripts{err: youtube.ErrNoTranscript}, nil)

	_, err := svc.IngestYouTube(context.Background(), uuid.New(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.ErrorIs(t, err, youtube.ErrNoTranscript)
	assert.Empty(t, uow.documents.docs)
	assert.Empty(t, pub.payloads)
}

func TestDownloadURL(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{"u/d.pdf": []byte("pdf")}}
	svc, uow, _ := newTestDocumentService(&fakeTranscripts{}, store)
	userId := uuid.New()

	doc := &entity.Document{
		Id:         uuid.New(),
		UserId:     userId,
		Name:       "biology.pdf",
		Status:     entity.DocumentStatusReady,
		StorageKey: "u/d.pdf",
	}
	uow.documents.docs = append(uow.documents.docs, doc)

	url, err := svc.DownloadURL(context.Background(), userId, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/u/d.pdf", url)

	// Another user cannot reach it.
	_, err = svc.DownloadURL(context.Background(), uuid.New(), doc.Id)
	assert.Error(t, err)

	// A document without a stored file has no link.
	noFile := &entity.Document{Id: uuid.New(), UserId: userId, Name: "t", Status: entity.DocumentStatusReady}
	uow.documents.docs = append(uow.documents.docs, noFile)
	_, err = svc.DownloadURL(context.Background(), userId, noFile.Id)
	assert.Error(t, err)
}
