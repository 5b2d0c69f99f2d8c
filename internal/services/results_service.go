package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/cache"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

// ResultsHeader is the header row shared by the CSV and XLSX exports
var ResultsHeader = []string{"Position", "Candidate", "Student ID", "Votes", "Percentage"}

const resultsSheet = "Results"

type resultsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewResultsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ResultsService {
	return &resultsService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// ===== PURE AGGREGATION =====

// TabulatePositions turns raw per-candidate tallies into ranked position
// results. Positions keep the given order; candidates are ranked by votes
// descending with ties broken by candidate id. It returns the election total.
func TabulatePositions(positions []*models.Position, tallies []models.CandidateTally) ([]models.PositionResult, int64) {
	byPosition := make(map[uint][]models.CandidateTally, len(positions))
	for _, t := range tallies {
		byPosition[t.PositionID] = append(byPosition[t.PositionID], t)
	}

	results := make([]models.PositionResult, 0, len(positions))
	var electionTotal int64

	for _, p := range positions {
		rows := byPosition[p.ID]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Votes != rows[j].Votes {
				return rows[i].Votes > rows[j].Votes
			}
			return rows[i].CandidateID < rows[j].CandidateID
		})

		var total int64
		for _, r := range rows {
			total += r.Votes
		}

		candidates := make([]models.CandidateResult, 0, len(rows))
		for _, r := range rows {
			candidates = append(candidates, models.CandidateResult{
				CandidateID: r.CandidateID,
				Name:        r.Name,
				StudentID:   r.StudentID,
				Votes:       r.Votes,
				Percentage:  percentage(r.Votes, total),
			})
		}

		results = append(results, models.PositionResult{
			PositionID: p.ID,
			Name:       p.Name,
			TotalVotes: total,
			Candidates: candidates,
		})
		electionTotal += total
	}

	return results, electionTotal
}

// percentage is votes/total*100 rounded to two decimals, 0 when total is 0
func percentage(votes, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)*10000/float64(total)) / 100
}

// LiveVoteDataFrom projects tabulated results onto the live snapshot shape
func LiveVoteDataFrom(results *models.ElectionResults) models.LiveVoteData {
	data := make(models.LiveVoteData, len(results.Positions))
	for _, p := range results.Positions {
		counts := make([]models.LiveCandidateCount, 0, len(p.Candidates))
		for _, c := range p.Candidates {
			counts = append(counts, models.LiveCandidateCount{Name: c.Name, Votes: c.Votes})
		}
		data[p.Name] = counts
	}
	return data
}

// ResultRows renders one export row per candidate in tabulation order
func ResultRows(results *models.ElectionResults) [][]string {
	var rows [][]string
	for _, p := range results.Positions {
		for _, c := range p.Candidates {
			rows = append(rows, []string{
				p.Name,
				c.Name,
				c.StudentID,
				strconv.FormatInt(c.Votes, 10),
				fmt.Sprintf("%.2f%%", c.Percentage),
			})
		}
	}
	return rows
}

// tabulateElection is the single path from storage to ElectionResults. A
// non-nil tx reads inside that transaction and bypasses the election cache.
func tabulateElection(ctx context.Context, repo repositories.Repository, tx *gorm.DB, electionID uint) (*models.ElectionResults, error) {
	election, err := repo.Election().GetByID(ctx, tx, electionID)
	if err != nil {
		return nil, notFoundAs(err, ErrElectionNotFound, "failed to get election")
	}

	positions, err := repo.Position().ListByElection(ctx, tx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	tallies, err := repo.Vote().TallyByElection(ctx, tx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}

	positionResults, total := TabulatePositions(positions, tallies)

	return &models.ElectionResults{
		ElectionID: election.ID,
		Title:      election.Title,
		Status:     election.Status,
		TotalVotes: total,
		Positions:  positionResults,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// freezeResults stores the current tabulation as a ResultSnapshot within tx
func freezeResults(ctx context.Context, repo repositories.Repository, tx *gorm.DB, electionID uint) (*models.ResultSnapshot, error) {
	results, err := tabulateElection(ctx, repo, tx, electionID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	snapshot := &models.ResultSnapshot{
		ElectionID: electionID,
		TotalVotes: results.TotalVotes,
		Payload:    datatypes.JSON(payload),
		ComputedAt: results.ComputedAt,
	}
	if err := repo.Snapshot().Create(ctx, tx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return snapshot, nil
}

// ===== SERVICE METHODS =====

func (s *resultsService) Tabulate(ctx context.Context, electionID uint) (*models.ElectionResults, error) {
	s.logger.Debug("Tabulating election results", "election_id", electionID)
	return tabulateElection(ctx, s.repo, nil, electionID)
}

func (s *resultsService) LiveSnapshot(ctx context.Context, electionID uint) (models.LiveVoteData, error) {
	var data models.LiveVoteData
	err := s.repo.Cache().Results.CacheOrExecute(ctx, cache.LiveResultsKey(electionID), &data, cache.ResultsCacheConfig.TTL, func() (interface{}, error) {
		results, err := tabulateElection(ctx, s.repo, nil, electionID)
		if err != nil {
			return nil, err
		}
		return LiveVoteDataFrom(results), nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *resultsService) ExportCSV(ctx context.Context, electionID uint, w io.Writer) error {
	results, err := s.freshResults(ctx, electionID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ResultsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(ResultRows(results)); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	s.logger.Info("Exported results CSV", "election_id", electionID, "total_votes", results.TotalVotes)
	return nil
}

func (s *resultsService) ExportXLSX(ctx context.Context, electionID uint, w io.Writer) error {
	results, err := s.freshResults(ctx, electionID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(ResultsHeader))
	for i, h := range ResultsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range ResultRows(results) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Exported results XLSX", "election_id", electionID, "total_votes", results.TotalVotes)
	return nil
}

func (s *resultsService) GetSnapshot(ctx context.Context, electionID uint) (*models.ResultSnapshot, error) {
	if _, err := s.repo.Election().GetByID(ctx, nil, electionID); err != nil {
		return nil, notFoundAs(err, ErrElectionNotFound, "failed to get election")
	}

	snapshot, err := s.repo.Snapshot().GetLatest(ctx, nil, electionID)
	if err != nil {
		return nil, notFoundAs(err, ErrSnapshotNotFound, "failed to get snapshot")
	}
	return snapshot, nil
}

// freshResults tabulates from the database, never from cache
func (s *resultsService) freshResults(ctx context.Context, electionID uint) (*models.ElectionResults, error) {
	return tabulateElection(ctx, s.repo, s.db, electionID)
}
