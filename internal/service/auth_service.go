package service

import (
	"context"
	"errors"
	"os"
	"time"

	"ai-studynotes-be/internal/config"
	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/repository/specification"
	"ai-studynotes-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Profile(ctx context.Context, userId uuid.UUID) (*dto.UserProfile, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	limits     config.LimitsConfig
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, limits config.LimitsConfig) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		limits:     limits,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: &hashStr,
		FullName:     req.FullName,
		Credits:      s.limits.FreeStartingCredits,
		CreatedAt:    time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildLoginResponse(ctx, uow, user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	return s.buildLoginResponse(ctx, uow, user)
}

func (s *authService) buildLoginResponse(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (*dto.LoginResponse, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	profile, err := s.profileOf(ctx, uow, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: signedToken,
		User:  *profile,
	}, nil
}

func (s *authService) Profile(ctx context.Context, userId uuid.UUID) (*dto.UserProfile, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return s.profileOf(ctx, uow, user)
}

func (s *authService) profileOf(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (*dto.UserProfile, error) {
	totalXp := 0
	xp, err := uow.XpProfileRepository().FindByUserId(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	if xp != nil {
		totalXp = xp.TotalXp
	}

	return &dto.UserProfile{
		Id:           user.Id,
		Email:        user.Email,
		FullName:     user.FullName,
		Credits:      user.Credits,
		IsSubscribed: user.IsSubscribed,
		TotalXp:      totalXp,
	}, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.LearningGoal != nil {
		user.LearningGoal = req.LearningGoal
	}
	if req.StudentType != nil {
		user.StudentType = req.StudentType
	}
	if req.Struggle != nil {
		user.Struggle = req.Struggle
	}
	if req.DesiredOutcome != nil {
		user.DesiredOutcome = req.DesiredOutcome
	}
	if req.Obstacles != nil {
		user.Obstacles = req.Obstacles
	}

	return uow.UserRepository().Update(ctx, user)
}
