package dto

import (
	"github.com/google/uuid"
)

type LegalQueryRequest struct {
	Query     string `json:"query" validate:"required,max=4000"`
	SessionId string `json:"session_id" validate:"max=128"`
	// Context holds earlier questions of the same conversation, oldest first.
	Context []string `json:"context,omitempty" validate:"max=10,dive,max=4000"`
}

type LegalQueryResponse struct {
	QueryRecordId *uuid.UUID       `json:"query_record_id,omitempty"`
	Answer        string           `json:"answer"`
	Confidence    float64          `json:"confidence"`
	Citations     []CitationDTO    `json:"citations"`
	Metadata      QueryMetadataDTO `json:"metadata"`
}

type CitationDTO struct {
	MarkerIndex    int            `json:"marker_index"`
	PassageId      string         `json:"passage_id"`
	Bibliographic  string         `json:"bibliographic"`
	Excerpt        string         `json:"excerpt"`
	RelevanceScore float64        `json:"relevance_score"`
	ExternalLink   string         `json:"external_link,omitempty"`
	Metadata       map[string]any `json:"metadata"`
}

type QueryMetadataDTO struct {
	DocumentsFound   int    `json:"documents_found"`
	QueryType        string `json:"query_type"`
	Complexity       string `json:"complexity"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	TokensUsed       int    `json:"tokens_used"`
}
