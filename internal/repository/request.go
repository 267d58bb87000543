package repository

import (
	"context"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository/dao"
)

var ErrRequestNotFound = dao.ErrRequestNotFound

type RequestDAO interface {
	Insert(ctx context.Context, request dao.QuoteRequest) (dao.QuoteRequest, error)
	FindByID(ctx context.Context, id uint) (dao.QuoteRequest, error)
	FindByProviderID(ctx context.Context, providerID uint) ([]dao.QuoteRequest, error)
	FindByOrganizerID(ctx context.Context, organizerID uint) ([]dao.QuoteRequest, error)
	UpdateStatus(ctx context.Context, requestID uint, status dao.RequestStatus) (dao.QuoteRequest, error)
	UpdateStatusCharged(ctx context.Context, requestID, providerID uint, status dao.RequestStatus) (dao.QuoteRequest, error)
	InsertMessage(ctx context.Context, message dao.Message) (dao.Message, error)
	InsertProviderMessage(ctx context.Context, message dao.Message, providerID uint) (dao.Message, error)
}

type RequestRepository struct {
	dao RequestDAO
}

func NewRequestRepository(dao RequestDAO) *RequestRepository {
	return &RequestRepository{
		dao: dao,
	}
}

func (r *RequestRepository) Create(ctx context.Context, request domain.QuoteRequest) (domain.QuoteRequest, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(request))
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id uint) (domain.QuoteRequest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RequestRepository) FindByProviderID(ctx context.Context, providerID uint) ([]domain.QuoteRequest, error) {
	found, err := r.dao.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByProviderID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *RequestRepository) FindByOrganizerID(ctx context.Context, organizerID uint) ([]domain.QuoteRequest, error) {
	found, err := r.dao.FindByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOrganizerID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, requestID uint, status domain.RequestStatus) (domain.QuoteRequest, error) {
	updated, err := r.dao.UpdateStatus(ctx, requestID, dao.RequestStatus(status))
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *RequestRepository) UpdateStatusCharged(ctx context.Context, requestID, providerID uint, status domain.RequestStatus) (domain.QuoteRequest, error) {
	updated, err := r.dao.UpdateStatusCharged(ctx, requestID, providerID, dao.RequestStatus(status))
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("r.dao.UpdateStatusCharged -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *RequestRepository) CreateMessage(ctx context.Context, message domain.Message) (domain.Message, error) {
	created, err := r.dao.InsertMessage(ctx, r.messageDomainToDao(message))
	if err != nil {
		return domain.Message{}, fmt.Errorf("r.dao.InsertMessage -> %w", err)
	}

	return r.messageDaoToDomain(created), nil
}

func (r *RequestRepository) CreateProviderMessage(ctx context.Context, message domain.Message, providerID uint) (domain.Message, error) {
	created, err := r.dao.InsertProviderMessage(ctx, r.messageDomainToDao(message), providerID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("r.dao.InsertProviderMessage -> %w", err)
	}

	return r.messageDaoToDomain(created), nil
}

func (r *RequestRepository) domainToDao(q domain.QuoteRequest) dao.QuoteRequest {
	return dao.QuoteRequest{
		ID:          q.ID,
		OrganizerID: q.OrganizerID,
		ProviderID:  q.ProviderID,
		ContactName: q.ContactName,
		Email:       q.Email,
		Phone:       q.Phone,
		EventType:   q.EventType,
		EventDate:   q.EventDate,
		GuestCount:  q.GuestCount,
		BudgetMin:   q.BudgetMin,
		BudgetMax:   q.BudgetMax,
		Message:     q.Message,
		Status:      dao.RequestStatus(q.Status),
	}
}

func (r *RequestRepository) daoToDomain(q dao.QuoteRequest) domain.QuoteRequest {
	request := domain.QuoteRequest{
		ID:          q.ID,
		OrganizerID: q.OrganizerID,
		ProviderID:  q.ProviderID,
		ContactName: q.ContactName,
		Email:       q.Email,
		Phone:       q.Phone,
		EventType:   q.EventType,
		EventDate:   q.EventDate,
		GuestCount:  q.GuestCount,
		BudgetMin:   q.BudgetMin,
		BudgetMax:   q.BudgetMax,
		Message:     q.Message,
		Status:      domain.RequestStatus(q.Status),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}

	if len(q.Messages) > 0 {
		request.Messages = make([]domain.Message, len(q.Messages))
		for i, m := range q.Messages {
			request.Messages[i] = r.messageDaoToDomain(m)
		}
	}

	return request
}

func (r *RequestRepository) daosToDomain(requests []dao.QuoteRequest) []domain.QuoteRequest {
	result := make([]domain.QuoteRequest, len(requests))
	for i, q := range requests {
		result[i] = r.daoToDomain(q)
	}

	return result
}

func (r *RequestRepository) messageDomainToDao(m domain.Message) dao.Message {
	return dao.Message{
		ID:        m.ID,
		RequestID: m.RequestID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
	}
}

func (r *RequestRepository) messageDaoToDomain(m dao.Message) domain.Message {
	message := domain.Message{
		ID:        m.ID,
		RequestID: m.RequestID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}

	if m.Author.ID != 0 {
		message.AuthorName = m.Author.Name
		message.AuthorRole = m.Author.Role
	}

	return message
}
