package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/witalo/prestoras/internal/domain/event"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/events"
)

// Client is the borrower aggregate. Its classification is derived state:
// it is never set by a caller directly, only recomputed from the client's
// loan portfolio.
type Client struct {
	id             string
	companyID      string
	fullName       string
	documentNumber string
	phone          string
	classification valueobject.Classification
	version        int
	createdAt      time.Time
	updatedAt      time.Time
	domainEvents   []events.DomainEvent
}

// NewClient registers a borrower. New clients start as PUNCTUAL.
func NewClient(companyID, fullName, documentNumber, phone string, now time.Time) (Client, error) {
	if companyID == "" {
		return Client{}, fault.Validation("company ID is required")
	}
	if fullName == "" {
		return Client{}, fault.Validation("full name is required")
	}
	if documentNumber == "" {
		return Client{}, fault.Validation("document number is required")
	}

	return Client{
		id:             uuid.New().String(),
		companyID:      companyID,
		fullName:       fullName,
		documentNumber: documentNumber,
		phone:          phone,
		classification: valueobject.ClassificationPunctual,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructClient rebuilds a Client aggregate from persistence.
func ReconstructClient(
	id, companyID, fullName, documentNumber, phone string,
	classification valueobject.Classification,
	version int,
	createdAt, updatedAt time.Time,
) Client {
	return Client{
		id:             id,
		companyID:      companyID,
		fullName:       fullName,
		documentNumber: documentNumber,
		phone:          phone,
		classification: classification,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// Reclassify records the classification computed from the client's loan
// portfolio. Emits ClientReclassified only when the value changes.
func (c Client) Reclassify(classification valueobject.Classification, now time.Time) Client {
	if c.classification.Equal(classification) {
		return c
	}

	next := c
	next.classification = classification
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewClientReclassified(
		c.id, c.companyID, c.classification.String(), classification.String(),
	))
	return next
}

func (c Client) ID() string                                 { return c.id }
func (c Client) CompanyID() string                          { return c.companyID }
func (c Client) FullName() string                           { return c.fullName }
func (c Client) DocumentNumber() string                     { return c.documentNumber }
func (c Client) Phone() string                              { return c.phone }
func (c Client) Classification() valueobject.Classification { return c.classification }
func (c Client) Version() int                               { return c.version }
func (c Client) CreatedAt() time.Time                       { return c.createdAt }
func (c Client) UpdatedAt() time.Time                       { return c.updatedAt }
func (c Client) DomainEvents() []events.DomainEvent         { return c.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (c Client) ClearEvents() Client {
	next := c
	next.domainEvents = nil
	return next
}
