package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/email"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	"github.com/jwalitptl/medconnect-api/pkg/auth"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/security"
)

const (
	resetCodeTTL    = 10 * time.Minute
	resetCodeDigits = 6
	// A code is burned after this many wrong guesses.
	maxResetAttempts = 5
)

var errInvalidCredentials = apperrors.Unauthorized("invalid credentials", nil)

type Service struct {
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	users        repository.UserRepository
	resetCodes   repository.ResetCodeStore
	jwtSvc       auth.JWTService
	revocations  *auth.RevocationList
	passwords    security.PasswordHasher
	codes        *security.CodeHasher
	mailer       email.Service
	logger       *logger.Logger
	defaultSlots []string
}

type Options struct {
	Repos        *repository.Repositories
	ResetCodes   repository.ResetCodeStore
	JWT          auth.JWTService
	Revocations  *auth.RevocationList
	Passwords    security.PasswordHasher
	Codes        *security.CodeHasher
	Mailer       email.Service
	Logger       *logger.Logger
	DefaultSlots []string
}

func NewService(opts Options) *Service {
	slots := opts.DefaultSlots
	if len(slots) == 0 {
		slots = model.DefaultFixedSlots
	}
	return &Service{
		doctors:      opts.Repos.Doctors,
		patients:     opts.Repos.Patients,
		users:        opts.Repos.Users,
		resetCodes:   opts.ResetCodes,
		jwtSvc:       opts.JWT,
		revocations:  opts.Revocations,
		passwords:    opts.Passwords,
		codes:        opts.Codes,
		mailer:       opts.Mailer,
		logger:       opts.Logger,
		defaultSlots: slots,
	}
}

// account is the role-independent view of a login identity.
type account struct {
	id             string
	email          string
	name           string
	role           string
	specialization string
	passwordHash   string
	profile        interface{}
	setPassword    func(ctx context.Context, hash string) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) findAccount(ctx context.Context, role, email string) (*account, error) {
	email = normalizeEmail(email)
	switch role {
	case "", model.RolePatient:
		p, err := s.patients.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &account{
			id: p.ID, email: p.Email, name: p.Name, role: model.RolePatient,
			passwordHash: p.PasswordHash, profile: p,
			setPassword: func(ctx context.Context, hash string) error {
				p.PasswordHash = hash
				return s.patients.Update(ctx, p)
			},
		}, nil
	case model.RoleDoctor:
		d, err := s.doctors.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &account{
			id: d.ID, email: d.Email, name: d.Name, role: model.RoleDoctor,
			specialization: d.Specialization, passwordHash: d.PasswordHash, profile: d,
			setPassword: func(ctx context.Context, hash string) error {
				d.PasswordHash = hash
				return s.doctors.Update(ctx, d)
			},
		}, nil
	case model.RoleAdmin:
		u, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &account{
			id: u.ID, email: u.Email, name: u.Name, role: u.Role,
			passwordHash: u.PasswordHash, profile: u,
			setPassword: func(ctx context.Context, hash string) error {
				u.PasswordHash = hash
				return s.users.Update(ctx, u)
			},
		}, nil
	}
	return nil, apperrors.BadRequest("unknown role "+role, nil)
}

func (s *Service) issue(acc *account) (*model.LoginResponse, error) {
	token, _, err := s.jwtSvc.GenerateToken(auth.Subject{
		ID:             acc.id,
		Email:          acc.email,
		Role:           acc.role,
		Specialization: acc.specialization,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.LoginResponse{Token: token, Role: acc.role, User: acc.profile}, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := s.passwords.Hash(password)
	if errors.Is(err, security.ErrPasswordTooShort) || errors.Is(err, security.ErrPasswordTooLong) {
		return "", apperrors.BadRequest(err.Error(), err)
	}
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return hash, nil
}

// RegisterPatient creates a patient account and logs it in.
func (s *Service) RegisterPatient(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error) {
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	patient := &model.Patient{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		Phone:        req.Phone,
		PasswordHash: hash,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, service.RepoError("patient", err)
	}

	s.logger.WithContext(ctx).Info("Patient registered", "patient_id", patient.ID)
	if err := s.mailer.SendWelcome(ctx, patient.Email, patient.Name); err != nil {
		s.logger.WithContext(ctx).Error(err, "Failed to send welcome email", "patient_id", patient.ID)
	}

	return s.issue(&account{id: patient.ID, email: patient.Email, role: model.RolePatient, profile: patient})
}

// RegisterDoctor is used by admins to onboard a doctor.
func (s *Service) RegisterDoctor(ctx context.Context, req model.RegisterDoctorRequest) (*model.Doctor, error) {
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	slots := req.FixedSlots
	if len(slots) == 0 {
		slots = append([]string(nil), s.defaultSlots...)
	}
	doctor := &model.Doctor{
		Name:           strings.TrimSpace(req.Name),
		Email:          normalizeEmail(req.Email),
		PasswordHash:   hash,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		Degree:         req.Degree,
		Experience:     req.Experience,
		Fees:           req.Fees,
		About:          req.About,
		Address:        req.Address,
		FixedSlots:     slots,
		IsActive:       true,
		Available:      true,
	}
	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, service.RepoError("doctor", err)
	}
	s.logger.WithContext(ctx).Info("Doctor registered", "doctor_id", doctor.ID)
	return doctor, nil
}

// Login checks credentials for the given role; an empty role means patient.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	acc, err := s.findAccount(ctx, req.Role, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.Internal(err)
	}
	if err := s.passwords.Compare(acc.passwordHash, req.Password); err != nil {
		s.logger.WithContext(ctx).Warn("Failed login attempt", "role", acc.role, "account_id", acc.id)
		return nil, errInvalidCredentials
	}
	if d, ok := acc.profile.(*model.Doctor); ok && !d.IsActive {
		return nil, apperrors.Forbidden("doctor account is deactivated", nil)
	}
	return s.issue(acc)
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(claims *auth.Claims) {
	if claims == nil || claims.RegisteredClaims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	s.revocations.Revoke(claims.RegisteredClaims.ID, claims.ExpiresAt.Time)
}

func (s *Service) GetProfile(ctx context.Context, actor model.Actor) (*model.Profile, error) {
	profile := &model.Profile{Role: actor.Role}
	var err error
	switch actor.Role {
	case model.RolePatient:
		profile.Patient, err = s.patients.Get(ctx, actor.ID)
	case model.RoleDoctor:
		profile.Doctor, err = s.doctors.Get(ctx, actor.ID)
	case model.RoleAdmin:
		profile.User, err = s.users.Get(ctx, actor.ID)
	default:
		return nil, apperrors.Forbidden("", nil)
	}
	if err != nil {
		return nil, service.RepoError("profile", err)
	}
	return profile, nil
}

// SetProfileImage stores the public path of an uploaded picture on the
// caller's profile.
func (s *Service) SetProfileImage(ctx context.Context, actor model.Actor, path string) error {
	switch actor.Role {
	case model.RolePatient:
		p, err := s.patients.Get(ctx, actor.ID)
		if err != nil {
			return service.RepoError("patient", err)
		}
		p.Image = path
		return service.RepoError("patient", s.patients.Update(ctx, p))
	case model.RoleDoctor:
		d, err := s.doctors.Get(ctx, actor.ID)
		if err != nil {
			return service.RepoError("doctor", err)
		}
		d.Image = path
		return service.RepoError("doctor", s.doctors.Update(ctx, d))
	}
	return apperrors.BadRequest("profile pictures are only supported for patients and doctors", nil)
}

func resetKey(role, email string) string {
	if role == "" {
		role = model.RolePatient
	}
	return role + ":" + normalizeEmail(email)
}

// ForgotPassword emails a one-time code. Unknown emails succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) error {
	acc, err := s.findAccount(ctx, req.Role, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WithContext(ctx).Info("Password reset requested for unknown account", "role", req.Role)
		return nil
	}
	if err != nil {
		return service.RepoError("account", err)
	}

	code, err := security.GenerateNumericCode(resetCodeDigits)
	if err != nil {
		return apperrors.Internal(err)
	}
	key := resetKey(acc.role, acc.email)
	if err := s.resetCodes.Save(ctx, key, s.codes.Hash(key, code), resetCodeTTL); err != nil {
		return apperrors.Internal(err)
	}
	if err := s.mailer.SendPasswordReset(ctx, acc.email, code); err != nil {
		s.logger.WithContext(ctx).Error(err, "Failed to send password reset email", "account_id", acc.id)
		return apperrors.Internal(err)
	}
	return nil
}

// ResetPassword verifies and consumes a reset code.
func (s *Service) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	invalid := apperrors.BadRequest("invalid or expired code", nil)

	key := resetKey(req.Role, req.Email)
	digest, err := s.resetCodes.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	if !s.codes.Equal(digest, s.codes.Hash(key, req.Code)) {
		s.recordFailedReset(ctx, key)
		return invalid
	}

	acc, err := s.findAccount(ctx, req.Role, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return service.RepoError("account", err)
	}
	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := acc.setPassword(ctx, hash); err != nil {
		return service.RepoError("account", err)
	}
	if err := s.resetCodes.Delete(ctx, key); err != nil {
		s.logger.WithContext(ctx).Error(err, "Failed to delete used reset code", "account_id", acc.id)
	}
	s.logger.WithContext(ctx).Info("Password reset", "role", acc.role, "account_id", acc.id)
	return nil
}

func (s *Service) recordFailedReset(ctx context.Context, key string) {
	log := s.logger.WithContext(ctx)
	attempts, err := s.resetCodes.Fail(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		log.Error(err, "Failed to record reset attempt")
		attempts = maxResetAttempts
	}
	if attempts < maxResetAttempts {
		return
	}
	if err := s.resetCodes.Delete(ctx, key); err != nil {
		log.Error(err, "Failed to revoke reset code")
		return
	}
	log.Warn("Reset code revoked after repeated failures", "attempts", attempts)
}

// EnsureAdmin seeds the bootstrap admin unless one with that email exists.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return err
	}
	user := &model.User{Name: "Administrator", Email: normalizeEmail(email), PasswordHash: hash, Role: model.RoleAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("Admin account created", "user_id", user.ID)
	return nil
}
