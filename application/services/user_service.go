package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/keys"
	pkgerrors "teamchat/pkg/errors"
	"teamchat/pkg/utils"
)

// UserService provisions users announced by the identity service
type UserService struct {
	store  ports.RecordStore[entities.User]
	clock  utils.Clock
	logger *zap.Logger
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(store ports.RecordStore[entities.User], clock utils.Clock, logger *zap.Logger) *UserService {
	return &UserService{store: store, clock: clock, logger: logger}
}

// Provision stores a user. A given ID must carry the user- prefix; an empty
// one is generated. Fails with ALREADY_EXISTS for a known ID.
func (s *UserService) Provision(ctx context.Context, input ports.ProvisionUserInput) (entities.User, error) {
	input.Email = keys.Email(input.Email)
	if err := utils.ValidateStruct(input); err != nil {
		return entities.User{}, err
	}

	id := input.ID
	switch {
	case id == "":
		id = keys.NewID(keys.PrefixUser)
	case !strings.HasPrefix(id, keys.PrefixUser):
		return entities.User{}, pkgerrors.NewValidationError(fmt.Sprintf("user id %q must start with %q", id, keys.PrefixUser))
	}

	now := s.clock.Now()
	user := entities.User{
		ID:             id,
		OrganizationID: input.OrganizationID,
		Email:          input.Email,
		DisplayName:    input.DisplayName,
		CreatedAt:      now,
		LastActiveAt:   now,
	}

	if err := s.store.Put(ctx, user); err != nil {
		return entities.User{}, pkgerrors.Wrap(err, "provision user")
	}

	s.logger.Info("User provisioned",
		zap.String("userID", user.ID),
		zap.String("organizationID", user.OrganizationID),
	)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (entities.User, error) {
	return s.store.Get(ctx, keys.EntityKey(userID))
}

// GetByEmail looks the user up through the email index.
func (s *UserService) GetByEmail(ctx context.Context, email string) (entities.User, error) {
	normalized := keys.Email(email)
	if normalized == "" {
		return entities.User{}, pkgerrors.NewValidationError("email is required")
	}

	page, err := s.store.Query(ctx, ports.QueryRequest{
		Index:     keys.GSI2,
		Partition: normalized,
		Limit:     1,
	})
	if err != nil {
		return entities.User{}, err
	}
	if len(page.Items) == 0 {
		return entities.User{}, pkgerrors.NewNotFoundError(fmt.Sprintf("user with email %s", normalized))
	}
	return page.Items[0], nil
}
