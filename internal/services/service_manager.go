package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/election-service/internal/events"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/validator"
	"gorm.io/gorm"
)

// ServiceManagerConfig selects which optional services the manager builds.
// Cache lifetimes live in the cache package next to the keys they govern.
type ServiceManagerConfig struct {
	Election     ServiceConfig
	Position     ServiceConfig
	Candidate    ServiceConfig
	Vote         ServiceConfig
	Results      ServiceConfig
	ImportExport ServiceConfig
}

type ServiceConfig struct {
	Enabled bool
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	electionService     ElectionService
	positionService     PositionService
	candidateService    CandidateService
	voteService         VoteService
	resultsService      ResultsService
	importExportService ImportExportService
	dashboardService    DashboardService
	userService         UserService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies.
// A nil publisher disables event publishing.
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// DefaultServiceManagerConfig enables every service
func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		Election:     ServiceConfig{Enabled: true},
		Position:     ServiceConfig{Enabled: true},
		Candidate:    ServiceConfig{Enabled: true},
		Vote:         ServiceConfig{Enabled: true},
		Results:      ServiceConfig{Enabled: true},
		ImportExport: ServiceConfig{Enabled: true},
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ServiceManager {
	return NewServiceManager(db, repo, logger, validator, publisher, DefaultServiceManagerConfig())
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.initializeServices()

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	if sm.config.Election.Enabled {
		sm.electionService = NewElectionService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
		sm.logger.Info("Election service initialized")
	}

	if sm.config.Position.Enabled {
		sm.positionService = NewPositionService(sm.repo, sm.db, sm.logger, sm.validator)
		sm.logger.Info("Position service initialized")
	}

	if sm.config.Candidate.Enabled {
		sm.candidateService = NewCandidateService(sm.repo, sm.db, sm.logger, sm.validator)
		sm.logger.Info("Candidate service initialized")
	}

	if sm.config.Vote.Enabled {
		sm.voteService = NewVoteService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
		sm.logger.Info("Vote service initialized")
	}

	if sm.config.Results.Enabled {
		sm.resultsService = NewResultsService(sm.repo, sm.db, sm.logger)
		sm.logger.Info("Results service initialized")
	}

	if sm.config.ImportExport.Enabled {
		sm.importExportService = NewImportExportService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
		sm.logger.Info("ImportExport service initialized")
	}

	sm.dashboardService = NewDashboardService(sm.repo, sm.db, sm.logger)
	sm.logger.Info("Dashboard service initialized")

	sm.userService = NewUserService(sm.repo, sm.db, sm.logger)
	sm.logger.Info("User service initialized")
}

// Service getters
func (sm *serviceManager) Election() ElectionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Election.Enabled && sm.electionService != nil {
		return sm.electionService
	}

	panic("election service not enabled or not initialized")
}

func (sm *serviceManager) Position() PositionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Position.Enabled && sm.positionService != nil {
		return sm.positionService
	}

	panic("position service not enabled or not initialized")
}

func (sm *serviceManager) Candidate() CandidateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Candidate.Enabled && sm.candidateService != nil {
		return sm.candidateService
	}

	panic("candidate service not enabled or not initialized")
}

func (sm *serviceManager) Vote() VoteService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Vote.Enabled && sm.voteService != nil {
		return sm.voteService
	}

	panic("vote service not enabled or not initialized")
}

func (sm *serviceManager) Results() ResultsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Results.Enabled && sm.resultsService != nil {
		return sm.resultsService
	}

	panic("results service not enabled or not initialized")
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.ImportExport.Enabled && sm.importExportService != nil {
		return sm.importExportService
	}

	panic("import/export service not enabled or not initialized")
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.dashboardService != nil {
		return sm.dashboardService
	}

	panic("dashboard service not initialized")
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.userService != nil {
		return sm.userService
	}

	panic("user service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown marks the manager closed. Connections are owned by the caller.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")
	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
