package repositories

import (
	"context"

	"github.com/SAP-F-2025/election-service/internal/cache"
)

// Repository aggregates every repository of the election service
type Repository interface {
	// Election domain
	Election() ElectionRepository
	Position() PositionRepository
	Candidate() CandidateRepository

	// Voting
	Vote() VoteRepository
	Snapshot() SnapshotRepository

	// Users and profiles
	User() UserRepository

	// Dashboard aggregates
	Dashboard() DashboardRepository

	// Cache shared by repositories and services
	Cache() *cache.CacheManager

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
