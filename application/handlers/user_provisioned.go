package handlers

import (
	"context"

	"go.uber.org/zap"

	"teamchat/application/dispatch"
	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	pkgerrors "teamchat/pkg/errors"
)

// UserProvisionedHandler creates users announced on the identity topic. The
// payload is a JSON object with id, organizationId, email and displayName.
// It must also carry entityType "User": messages without that tag match no
// handler and are dropped.
type UserProvisionedHandler struct {
	origins Origins
	users   ports.UserService
	logger  *zap.Logger
}

func NewUserProvisionedHandler(origins Origins, users ports.UserService, logger *zap.Logger) *UserProvisionedHandler {
	return &UserProvisionedHandler{origins: origins, users: users, logger: logger}
}

func (h *UserProvisionedHandler) Name() string { return "UserProvisioned" }

func (h *UserProvisionedHandler) Supports(rec dispatch.ChangeRecord) bool {
	return rec.Is(h.origins.UserTopic, dispatch.Insert, entities.TypeUser)
}

func (h *UserProvisionedHandler) Process(ctx context.Context, rec dispatch.ChangeRecord) error {
	user, err := h.users.Provision(ctx, ports.ProvisionUserInput{
		ID:             rec.After.String("id"),
		OrganizationID: rec.After.String("organizationId"),
		Email:          rec.After.String("email"),
		DisplayName:    rec.After.String("displayName"),
	})
	if pkgerrors.IsAlreadyExists(err) {
		h.logger.Debug("User already provisioned", zap.String("userID", rec.After.String("id")))
		return nil
	}
	if err != nil {
		return err
	}

	h.logger.Info("User provisioned from identity topic", zap.String("userID", user.ID))
	return nil
}
