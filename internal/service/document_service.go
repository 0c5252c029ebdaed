package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/pkg/logger"
	"ai-learning-partner-be/internal/repository/specification"
	"ai-learning-partner-be/internal/repository/unitofwork"
	"ai-learning-partner-be/pkg/pdf"
	"ai-learning-partner-be/pkg/utils"
	"ai-learning-partner-be/pkg/youtube"

	"github.com/google/uuid"
)

// downloadLinkTTL bounds how long a presigned document link stays valid.
const downloadLinkTTL = 15 * time.Minute

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, fileName string, data []byte) (*dto.UploadDocumentResponse, error)
	IngestYouTube(ctx context.Context, userId uuid.UUID, videoURL string) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) (*dto.ListDocumentsResponse, error)
	DownloadURL(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (string, error)
}

// TranscriptFetcher is the transcript capability IngestYouTube uses;
// satisfied by youtube.Client.
type TranscriptFetcher interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

// ObjectStore keeps raw uploaded files; satisfied by storage.ObjectStorage.
// A nil store disables raw-file retention and downloads.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	objectStorage    ObjectStore
	transcripts      TranscriptFetcher
	logger           logger.ILogger
	chunkSize        int
	chunkOverlap     int
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	objectStorage ObjectStore,
	transcripts TranscriptFetcher,
	log logger.ILogger,
	chunkSize, chunkOverlap int,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		objectStorage:    objectStorage,
		transcripts:      transcripts,
		logger:           log,
		chunkSize:        chunkSize,
		chunkOverlap:     chunkOverlap,
	}
}

// Upload ingests a PDF: extract text, persist the document and its chunks,
// then queue the chunks for embedding. Re-uploading a file name the user
// already has is not an error; the existing document is acknowledged instead
// of re-processed.
func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, fileName string, data []byte) (*dto.UploadDocumentResponse, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, errors.New("file name is required")
	}
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := s.findExisting(ctx, uow, userId, fileName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	text, err := pdf.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("could not read pdf: %w", err)
	}
	if text == "" {
		return nil, errors.New("pdf contains no extractable text")
	}

	documentId := uuid.New()

	// Keep the original file; embeddings can be rebuilt from it later.
	storageKey := ""
	if s.objectStorage != nil {
		key := fmt.Sprintf("%s/%s.pdf", userId, documentId)
		storageKey, err = s.objectStorage.Put(ctx, key, data, "application/pdf")
		if err != nil {
			s.logger.Warn("document_service", "failed to store raw pdf", map[string]interface{}{
				"document_id": documentId.String(),
				"error":       err.Error(),
			})
			storageKey = ""
		}
	}

	return s.ingestText(ctx, uow, userId, documentId, fileName, storageKey, text)
}

// IngestYouTube turns a video transcript into a queryable document. The
// document is named after the video id, so re-submitting the same video is
// deduplicated exactly like a re-uploaded file.
func (s *documentService) IngestYouTube(ctx context.Context, userId uuid.UUID, videoURL string) (*dto.UploadDocumentResponse, error) {
	videoID, err := youtube.VideoID(videoURL)
	if err != nil {
		return nil, err
	}
	name := "youtube-" + videoID

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := s.findExisting(ctx, uow, userId, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	transcript, err := s.transcripts.Transcript(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve transcript: %w", err)
	}

	return s.ingestText(ctx, uow, userId, uuid.New(), name, "", transcript)
}

func (s *documentService) findExisting(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, name string) (*dto.UploadDocumentResponse, error) {
	existing, err := uow.DocumentRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByDocumentName{Name: name},
	)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return &dto.UploadDocumentResponse{
		Id:            existing.Id,
		Name:          existing.Name,
		Status:        existing.Status,
		AlreadyExists: true,
	}, nil
}

// ingestText persists a document with its unembedded chunks in one
// transaction, then queues it for embedding.
func (s *documentService) ingestText(ctx context.Context, uow unitofwork.UnitOfWork, userId, documentId uuid.UUID, name, storageKey, text string) (*dto.UploadDocumentResponse, error) {
	document := &entity.Document{
		Id:         documentId,
		UserId:     userId,
		Name:       name,
		Status:     entity.DocumentStatusProcessing,
		StorageKey: storageKey,
		CreatedAt:  time.Now(),
	}

	chunkTexts := utils.SplitText(text, s.chunkSize, s.chunkOverlap)
	chunks := make([]*entity.DocumentChunk, len(chunkTexts))
	for i, c := range chunkTexts {
		chunks[i] = &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: documentId,
			ChunkIndex: i,
			Content:    c,
			CreatedAt:  time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: documentId})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, fmt.Errorf("queue document for embedding: %w", err)
	}

	s.logger.Info("document_service", "document queued for embedding", map[string]interface{}{
		"document_id": documentId.String(),
		"chunks":      len(chunks),
	})

	return &dto.UploadDocumentResponse{
		Id:     documentId,
		Name:   name,
		Status: document.Status,
	}, nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) (*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListDocumentsResponse{Documents: make([]dto.DocumentResponse, 0, len(documents))}
	for _, d := range documents {
		resp.Documents = append(resp.Documents, dto.DocumentResponse{
			Id:        d.Id,
			Name:      d.Name,
			Status:    d.Status,
			CreatedAt: d.CreatedAt,
		})
	}
	return resp, nil
}

// DownloadURL returns a short-lived presigned link to the original file of a
// document the user owns.
func (s *documentService) DownloadURL(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return "", err
	}
	if document == nil {
		return "", errors.New("document not found")
	}
	if s.objectStorage == nil || document.StorageKey == "" {
		return "", errors.New("document has no stored file")
	}

	return s.objectStorage.PresignedURL(ctx, document.StorageKey, downloadLinkTTL)
}
