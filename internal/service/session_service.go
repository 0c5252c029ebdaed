package service

import (
	"context"
	"errors"

	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/repository/memory"
	"ai-learning-partner-be/internal/repository/specification"
	"ai-learning-partner-be/internal/repository/unitofwork"
	"ai-learning-partner-be/pkg/store"

	"github.com/google/uuid"
)

type ISessionService interface {
	SetMode(ctx context.Context, userId uuid.UUID, req *dto.SetModeRequest) (*dto.SessionResponse, error)
	SetLevel(ctx context.Context, userId uuid.UUID, req *dto.SetLevelRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, userId uuid.UUID) (*dto.SessionResponse, error)
}

type sessionService struct {
	sessions   *memory.SessionRepository
	uowFactory unitofwork.RepositoryFactory
}

func NewSessionService(sessions *memory.SessionRepository, uowFactory unitofwork.RepositoryFactory) ISessionService {
	return &sessionService{
		sessions:   sessions,
		uowFactory: uowFactory,
	}
}

// SetMode switches the session's learning mode. Switching abandons any
// lesson in progress; document study verifies the document is searchable.
func (s *sessionService) SetMode(ctx context.Context, userId uuid.UUID, req *dto.SetModeRequest) (*dto.SessionResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())

	if req.Mode == store.ModeStudyDocument && req.DocumentName != "" {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		doc, err := uow.DocumentRepository().FindOne(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.ByDocumentName{Name: req.DocumentName},
		)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, errors.New("document not found")
		}
	}

	session.Mode = req.Mode
	session.Phase = store.PhaseFreeChat
	session.Quiz = nil
	session.Plan = nil
	session.StepIndex = 0
	if req.Mode == store.ModeStudyDocument {
		session.ActiveDocument = req.DocumentName
	} else {
		session.ActiveDocument = ""
	}
	s.sessions.Save(session)

	return sessionToResponse(session), nil
}

func (s *sessionService) SetLevel(ctx context.Context, userId uuid.UUID, req *dto.SetLevelRequest) (*dto.SessionResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())
	session.KnowledgeLevel = req.Level
	s.sessions.Save(session)
	return sessionToResponse(session), nil
}

func (s *sessionService) Get(ctx context.Context, userId uuid.UUID) (*dto.SessionResponse, error) {
	return sessionToResponse(s.sessions.GetOrCreate(userId.String())), nil
}

func sessionToResponse(session *store.LearnerSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Mode:           session.Mode,
		KnowledgeLevel: session.KnowledgeLevel,
		Phase:          session.Phase,
		Topic:          session.Topic,
		ActiveDocument: session.ActiveDocument,
	}
}
