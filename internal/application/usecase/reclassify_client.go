package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/port"
	"github.com/witalo/prestoras/internal/domain/service"
)

// ReclassifyClientUseCase recomputes a client's standing from their full
// loan portfolio and persists the result onto the Client aggregate.
type ReclassifyClientUseCase struct {
	clientRepo port.ClientRepository
	loanRepo   port.LoanRepository
	classifier *service.Classifier
	publisher  port.EventPublisher
}

// NewReclassifyClientUseCase wires dependencies.
func NewReclassifyClientUseCase(
	clientRepo port.ClientRepository,
	loanRepo port.LoanRepository,
	classifier *service.Classifier,
	publisher port.EventPublisher,
) *ReclassifyClientUseCase {
	return &ReclassifyClientUseCase{
		clientRepo: clientRepo,
		loanRepo:   loanRepo,
		classifier: classifier,
		publisher:  publisher,
	}
}

// Execute re-evaluates the client. The write is skipped when the
// classification is unchanged.
func (uc *ReclassifyClientUseCase) Execute(ctx context.Context, req dto.ReclassifyClientRequest) (dto.ClassificationResponse, error) {
	now := time.Now().UTC()

	client, err := uc.clientRepo.FindByID(ctx, req.CompanyID, req.ClientID)
	if err != nil {
		return dto.ClassificationResponse{}, fmt.Errorf("find client: %w", err)
	}

	loans, err := uc.loanRepo.FindByClientID(ctx, req.CompanyID, req.ClientID)
	if err != nil {
		return dto.ClassificationResponse{}, fmt.Errorf("find loans: %w", err)
	}

	classification := uc.classifier.Classify(loans, now)
	if client.Classification().Equal(classification) {
		return dto.ClassificationResponse{
			ClientID:       client.ID(),
			Classification: classification.String(),
			Changed:        false,
		}, nil
	}

	client = client.Reclassify(classification, now)

	if err := uc.clientRepo.Save(ctx, client); err != nil {
		return dto.ClassificationResponse{}, fmt.Errorf("save client: %w", err)
	}
	if err := uc.publisher.Publish(ctx, client.DomainEvents()...); err != nil {
		return dto.ClassificationResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.ClassificationResponse{
		ClientID:       client.ID(),
		Classification: classification.String(),
		Changed:        true,
	}, nil
}
