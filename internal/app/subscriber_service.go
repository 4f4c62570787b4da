package app

import (
	"context"
	"database/sql"
	"fmt"

	"viber_notification_bot/internal/domain/subscriber"
	idb "viber_notification_bot/internal/infra/database" // Custom errors like ErrSubscriberNotFound live here
)

// Custom application-level errors for subscriber management
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrSubscriberAlreadyExists = fmt.Errorf("subscriber with this Viber ID already exists")
var ErrSubscriberAlreadyInactive = fmt.Errorf("subscriber is already inactive")

type SubscriberService struct {
	subscriberRepo subscriber.Repository
	adminViberID   string
}

func NewSubscriberService(sr subscriber.Repository, adminViberID string) *SubscriberService {
	return &SubscriberService{
		subscriberRepo: sr,
		adminViberID:   adminViberID,
	}
}

// AddSubscriber handles the business logic for enrolling a new subscriber.
func (s *SubscriberService) AddSubscriber(ctx context.Context, performingViberID, newViberID, name, avatarURL string) (*subscriber.Subscriber, error) {
	if performingViberID != s.adminViberID {
		return nil, ErrAdminNotAuthorized
	}

	// Check if subscriber already exists by Viber ID
	_, err := s.subscriberRepo.GetByViberID(ctx, newViberID)
	if err == nil { // Subscriber found, so already exists
		return nil, ErrSubscriberAlreadyExists
	}
	if err != idb.ErrSubscriberNotFound { // Another error occurred during lookup
		return nil, fmt.Errorf("failed to check existing subscriber: %w", err)
	}

	var avatar sql.NullString
	if avatarURL != "" {
		avatar.String = avatarURL
		avatar.Valid = true
	}

	newSubscriber := &subscriber.Subscriber{
		ViberID:  newViberID,
		Name:     name,
		Avatar:   avatar,
		IsActive: true, // New subscribers are active by default
	}

	err = s.subscriberRepo.Create(ctx, newSubscriber)
	if err != nil {
		if err == idb.ErrDuplicateViberID { // Redundant check if GetByViberID is perfect, but good for safety
			return nil, ErrSubscriberAlreadyExists
		}
		return nil, fmt.Errorf("failed to create subscriber in repository: %w", err)
	}

	return newSubscriber, nil
}

// RemoveSubscriber handles the business logic for deactivating a subscriber.
func (s *SubscriberService) RemoveSubscriber(ctx context.Context, performingViberID, viberIDToRemove string) (*subscriber.Subscriber, error) {
	if performingViberID != s.adminViberID {
		return nil, ErrAdminNotAuthorized
	}

	targetSubscriber, err := s.subscriberRepo.GetByViberID(ctx, viberIDToRemove)
	if err != nil {
		if err == idb.ErrSubscriberNotFound {
			return nil, idb.ErrSubscriberNotFound // Propagate specific error
		}
		return nil, fmt.Errorf("failed to get subscriber by Viber ID for removal: %w", err)
	}

	// Check if already inactive
	if !targetSubscriber.IsActive {
		return targetSubscriber, ErrSubscriberAlreadyInactive
	}

	targetSubscriber.IsActive = false
	err = s.subscriberRepo.Update(ctx, targetSubscriber)
	if err != nil {
		return nil, fmt.Errorf("failed to update subscriber to inactive in repository: %w", err)
	}

	return targetSubscriber, nil
}

// ListSubscribers returns every known subscriber, active or not.
func (s *SubscriberService) ListSubscribers(ctx context.Context, performingViberID string) ([]*subscriber.Subscriber, error) {
	if performingViberID != s.adminViberID {
		return nil, ErrAdminNotAuthorized
	}
	subscribers, err := s.subscriberRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subscribers, nil
}
