package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/model"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/pkg/jwtutil"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrStationExists     = errors.New("station name already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid station name or password")
)

type AuthService struct {
	stationRepo   *repository.StationRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Name     string
	Email    string
	Region   string
	Password string
}

type LoginInput struct {
	Name     string
	Password string
}

type AuthResult struct {
	Token   string
	Station *model.Station
}

func NewAuthService(stationRepo *repository.StationRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		stationRepo:   stationRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	region := strings.TrimSpace(input.Region)
	password := strings.TrimSpace(input.Password)

	if name == "" || email == "" || password == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existingByName, err := s.stationRepo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrStationExists
	}

	existingByEmail, err := s.stationRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	station := &model.Station{
		Name:         name,
		Email:        email,
		Region:       region,
		PasswordHash: string(hash),
	}
	if err := s.stationRepo.Create(station); err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, station.ID, station.Name)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Station: station}, nil
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	password := strings.TrimSpace(input.Password)
	if name == "" || password == "" {
		return nil, ErrInvalidInput
	}

	station, err := s.stationRepo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(station.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, station.ID, station.Name)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Station: station}, nil
}

func (s *AuthService) GetStationByID(id uint) (*model.Station, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.stationRepo.GetByID(id)
}
