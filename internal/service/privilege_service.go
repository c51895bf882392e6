package service

import (
	"context"

	"github.com/tvet-mis/console/internal/domain/privilege"
	"github.com/tvet-mis/console/internal/domain/session"
	"github.com/tvet-mis/console/internal/port/outbound"
)

// PrivilegeService exposes the privilege definition lookups used by
// role administration: the full parent list and the children of one
// parent. These read the server's definitions, not the session's
// granted list.
type PrivilegeService struct {
	backend  outbound.Backend
	sessions *session.Store
}

// NewPrivilegeService creates the service.
func NewPrivilegeService(backend outbound.Backend, sessions *session.Store) *PrivilegeService {
	return &PrivilegeService{backend: backend, sessions: sessions}
}

// ParentPrivileges lists every top-level privilege definition.
func (s *PrivilegeService) ParentPrivileges(ctx context.Context) ([]privilege.Privilege, error) {
	if !s.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.backend.ParentPrivileges(ctx)
}

// ChildPrivileges lists the child definitions of a parent privilege.
func (s *PrivilegeService) ChildPrivileges(ctx context.Context, parentID int64) ([]privilege.Privilege, error) {
	if !s.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.backend.ChildPrivileges(ctx, parentID)
}
