package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/db"
	"github.com/angelmondragon/configurator-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/security"
	"github.com/google/uuid"
)

const invalidCodeMessage = "invalid or expired verification code"

// Service resolves customers and runs email verification.
type Service interface {
	Resolve(ctx context.Context, in ResolveInput) (*CustomerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	IssueVerification(ctx context.Context, customerID uuid.UUID) (*Issued, error)
	Verify(ctx context.Context, customerID uuid.UUID, code string) error
	IsVerified(ctx context.Context, customerID uuid.UUID) (bool, error)
}

type customerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	CreateCode(ctx context.Context, code *models.VerificationCode) error
	LatestActiveCode(ctx context.Context, customerID uuid.UUID) (*models.VerificationCode, error)
	IncrementAttempts(ctx context.Context, codeID uuid.UUID) error
	ConfirmCode(ctx context.Context, codeID, customerID uuid.UUID, at time.Time) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ServiceParams bundles the dependencies required to build a customers service.
type ServiceParams struct {
	Repo         customerRepository
	Mailer       Mailer
	Limiter      rateLimiter
	Verification config.VerificationConfig
	Password     config.PasswordConfig
	Logger       *logger.Logger
}

type service struct {
	repo     customerRepository
	mailer   Mailer
	limiter  rateLimiter
	cfg      config.VerificationConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the customers service. Limiter is optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("customer repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	cfg := params.Verification
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 15 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &service{
		repo:     params.Repo,
		mailer:   params.Mailer,
		limiter:  params.Limiter,
		cfg:      cfg,
		password: params.Password,
		logg:     params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Resolve(ctx context.Context, in ResolveInput) (*CustomerDTO, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return FromModel(existing), nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}

	customer := in.toModel()
	if err := s.repo.Create(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "") {
			if raced, findErr := s.repo.FindByEmail(ctx, email); findErr == nil {
				return FromModel(raced), nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return FromModel(customer), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

// IssueVerification stores the hash of a fresh code and mails the plaintext. Issuing is
// rate limited per customer when a limiter is configured.
func (s *service) IssueVerification(ctx context.Context, customerID uuid.UUID) (*Issued, error) {
	customer, err := s.find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already verified")
	}
	if err := s.allowIssue(ctx, customerID); err != nil {
		return nil, err
	}

	code, err := security.GenerateNumericCode(s.cfg.CodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}
	hash, err := security.HashSecret(code, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash verification code")
	}

	now := s.now()
	record := &models.VerificationCode{
		ID:         uuid.New(),
		CustomerID: customerID,
		CodeHash:   hash,
		ExpiresAt:  now.Add(s.cfg.CodeTTL),
		CreatedAt:  now,
	}
	if err := s.repo.CreateCode(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification code")
	}
	if err := s.mailer.SendVerificationCode(ctx, customer.Email, code); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification code")
	}
	return &Issued{CustomerID: customerID, ExpiresAt: record.ExpiresAt}, nil
}

// Verify checks code against the newest active code. Verifying an already verified
// customer succeeds without consuming anything.
func (s *service) Verify(ctx context.Context, customerID uuid.UUID, code string) error {
	customer, err := s.find(ctx, customerID)
	if err != nil {
		return err
	}
	if customer.EmailVerified {
		return nil
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification code is required")
	}

	active, err := s.repo.LatestActiveCode(ctx, customerID)
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidCodeMessage)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification code")
	}

	now := s.now()
	if !now.Before(active.ExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidCodeMessage)
	}
	if active.Attempts >= s.cfg.MaxAttempts {
		return pkgerrors.New(pkgerrors.CodeValidation, "too many verification attempts").
			WithDetails(map[string]any{"max_attempts": s.cfg.MaxAttempts})
	}
	if err := s.repo.IncrementAttempts(ctx, active.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record verification attempt")
	}

	ok, err := security.VerifySecret(code, active.CodeHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify code hash")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidCodeMessage)
	}

	if err := s.repo.ConfirmCode(ctx, active.ID, customerID, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm verification")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithCustomerID(ctx, customerID.String()), "customers.email_verified")
	}
	return nil
}

func (s *service) IsVerified(ctx context.Context, customerID uuid.UUID) (bool, error) {
	customer, err := s.find(ctx, customerID)
	if err != nil {
		return false, err
	}
	return customer.EmailVerified, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
			WithDetails(map[string]any{"customer_id": id})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) allowIssue(ctx context.Context, customerID uuid.UUID) error {
	if s.limiter == nil || s.cfg.IssueLimit <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, "verification:"+customerID.String(), s.cfg.IssueLimit, s.cfg.IssueWindow)
	if err != nil {
		if s.logg != nil {
			s.logg.WarnErr(s.logg.WithCustomerID(ctx, customerID.String()), "customers.rate_limit_unavailable", err)
		}
		return nil
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many verification codes requested").
			WithDetails(map[string]any{"retry_after_seconds": int(s.cfg.IssueWindow.Seconds())})
	}
	return nil
}
