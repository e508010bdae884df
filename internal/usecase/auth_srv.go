package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	RegisterFlightOwner(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	// BootstrapAdmin creates the configured administrator when no user has
	// ever registered. It reports whether an account was created.
	BootstrapAdmin(ctx context.Context) (bool, error)
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	user, err := s.createUser(ctx, req, entity.RoleUser)
	if err != nil {
		return nil, err
	}

	// Auto login after register
	return s.issueToken(ctx, user)
}

func (s *authService) RegisterFlightOwner(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	user, err := s.createUser(ctx, req, entity.RoleFlightOwner)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) createUser(ctx context.Context, req *request.RegisterRequest, role entity.UserRole) (*entity.User, error) {
	// 1. Validate input
	if err := validateRequest(s.log, "Register", req); err != nil {
		return nil, err
	}

	// 2. Email and username must be free
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if err := s.ensureAvailable(ctx, uuid.Nil, email, username); err != nil {
		return nil, err
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. Save user
	now := s.now()
	user := &entity.User{
		Base:         entity.NewBase(now),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Phone:        req.Phone,
		Gender:       req.Gender,
		Address:      req.Address,
		Roles:        []entity.UserRole{role},
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(role)),
	)
	return user, nil
}

// ensureAvailable fails with utils.ErrConflict when email or username
// belongs to a user other than self.
func (s *authService) ensureAvailable(ctx context.Context, self uuid.UUID, email, username string) error {
	return ensureIdentityAvailable(ctx, s.repo.User, self, email, username)
}

func ensureIdentityAvailable(ctx context.Context, users repository.UserRepository, self uuid.UUID, email, username string) error {
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return fmt.Errorf("email %s already registered: %w", email, utils.ErrConflict)
	}

	existing, err = users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return fmt.Errorf("username %s already taken: %w", username, utils.ErrConflict)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	// 1. Validate
	if err := validateRequest(s.log, "Login", req); err != nil {
		return nil, err
	}

	// 2. Find user by email, then by username
	identifier := strings.TrimSpace(req.Username)
	user, err := s.repo.User.FindByEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if user, err = s.repo.User.FindByUsername(ctx, identifier); err != nil {
			return nil, err
		}
	}

	// 3. Check credentials
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("identifier", identifier))
		return nil, fmt.Errorf("invalid credentials: %w", utils.ErrUnauthenticated)
	}
	if !user.IsActive || user.IsDeleted() {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("account is deactivated: %w", utils.ErrUnauthenticated)
	}

	resp, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return fmt.Errorf("invalid token format: %w", utils.ErrUnauthenticated)
	}

	if err := s.repo.Session.Revoke(ctx, tokenUUID); err != nil {
		return err
	}

	s.log.Info("User logged out", zap.String("session", tokenUUID.String()))
	return nil
}

func (s *authService) BootstrapAdmin(ctx context.Context) (bool, error) {
	count, err := s.repo.User.CountAll(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	admin := s.config.Admin
	if admin.Email == "" || admin.Password == "" {
		s.log.Warn("User store is empty and no admin account is configured")
		return false, nil
	}
	username := admin.Username
	if username == "" {
		username = "admin"
	}

	req := &request.RegisterRequest{
		Username:        username,
		Email:           admin.Email,
		Password:        admin.Password,
		ConfirmPassword: admin.Password,
	}
	if _, err := s.createUser(ctx, req, entity.RoleAdmin); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	s.log.Info("Admin account bootstrapped", zap.String("email", admin.Email))
	return true, nil
}

// ==================== HELPER METHODS ====================

// issueToken opens a session and signs an access token whose ID is the
// session token.
func (s *authService) issueToken(ctx context.Context, user *entity.User) (*response.AuthResponse, error) {
	now := s.now()
	expiry := time.Duration(s.config.JWT.ExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	session := entity.NewSession(user.ID, now, expiry)
	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := utils.NewAccessToken(s.config.JWT.Secret, user.ID, entity.RoleNames(user.Roles), session.Token, session.ExpiresAt)
	if err != nil {
		s.log.Error("Failed to sign access token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &response.AuthResponse{
		UserID:    user.ID.String(),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Email:     user.Email,
		Username:  user.Username,
		Roles:     user.Roles,
	}, nil
}
