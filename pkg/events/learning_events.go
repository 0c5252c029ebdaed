package events

import "time"

const (
	TypeDocumentIngested = "DOCUMENT_INGESTED"
	TypeGoalCompleted    = "GOAL_COMPLETED"
)

// NewDocumentIngestedEvent fires once a document's chunks are embedded and
// the document becomes searchable.
func NewDocumentIngestedEvent(userID, documentID, documentName string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"user_id":       userID,
			"document_id":   documentID,
			"document_name": documentName,
			"chunk_count":   chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewGoalCompletedEvent fires when a learner finishes a lesson's final quiz.
func NewGoalCompletedEvent(userID, goalID, topic string, score, total int) Event {
	return BaseEvent{
		Type: TypeGoalCompleted,
		Data: map[string]interface{}{
			"user_id": userID,
			"goal_id": goalID,
			"topic":   topic,
			"score":   score,
			"total":   total,
		},
		OccurredAt: time.Now(),
	}
}
