package unitofwork

import (
	"context"

	"juris-rag-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	QueryRecordRepository() contract.QueryRecordRepository
	QueryCitationRepository() contract.QueryCitationRepository
	LegalPassageRepository() contract.LegalPassageRepository
}
