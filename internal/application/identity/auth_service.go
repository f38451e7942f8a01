package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/auth"
)

// AuthService handles tenant registration and authentication
type AuthService struct {
	tenantRepo identity.TenantRepository
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	tenantRepo identity.TenantRepository,
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a new tenant together with its first admin user
// and returns a token so the store can start operating immediately.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	slug := strings.ToLower(strings.TrimSpace(req.TenantSlug))

	exists, err := s.tenantRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A store with this slug already exists")
	}

	tenant, err := identity.NewTenant(req.TenantName, slug)
	if err != nil {
		return nil, err
	}
	if req.TenantCategory != "" {
		if err := tenant.SetCategory(req.TenantCategory); err != nil {
			return nil, err
		}
	}

	user, err := identity.NewUser(tenant.ID, req.Email, req.Name, req.Password, identity.UserRoleAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		TenantID: tenant.ID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
	)

	return &RegisterResponse{
		Tenant: ToTenantResponse(tenant),
		User:   ToUserResponse(user),
		Token:  token,
	}, nil
}

// Login authenticates a user against a tenant and returns a token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	tenant, err := s.tenantRepo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(req.TenantSlug)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}
	if !tenant.Active {
		return nil, shared.NewDomainError("TENANT_INACTIVE", "This store has been deactivated")
	}

	user, err := s.userRepo.FindByEmailForTenant(ctx, tenant.ID, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}
	if !user.Active {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.CheckPassword(req.Password) {
		s.logger.Warn("invalid password attempt",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("email", user.Email),
		)
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		TenantID: tenant.ID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("user_id", user.ID.String()),
	)

	return &LoginResponse{
		Tenant: ToTenantResponse(tenant),
		User:   ToUserResponse(user),
		Token:  token,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
// Tenant and user are re-checked so a deactivation cuts the session short.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*auth.Token, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
	}

	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
		}
		return nil, err
	}
	if !tenant.Active {
		return nil, shared.NewDomainError("TENANT_INACTIVE", "This store has been deactivated")
	}

	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
		}
		return nil, err
	}
	if !user.Active {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	return s.jwtService.GenerateToken(auth.GenerateTokenInput{
		TenantID: tenant.ID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
	})
}

// CreateUser creates an additional user within an existing tenant
func (s *AuthService) CreateUser(ctx context.Context, tenantID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, tenantID, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	user, err := identity.NewUser(tenantID, email, req.Name, req.Password, identity.UserRole(req.Role))
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// GetTenant retrieves the caller's tenant
func (s *AuthService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// GetUser retrieves a user by ID within a tenant
func (s *AuthService) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}
