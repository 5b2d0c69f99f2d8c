package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/cache"
	"github.com/SAP-F-2025/election-service/internal/events"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/validator"
)

// Column layouts shared by import and export
var (
	UserColumns      = []string{"username", "first_name", "last_name", "email"}
	ElectionColumns  = []string{"title", "description", "start_date", "end_date", "status"}
	PositionColumns  = []string{"name", "election", "max_candidates"}
	CandidateColumns = []string{"name", "student_id", "position", "manifesto"}
)

var (
	userRequired      = []string{"username", "first_name", "last_name", "email"}
	electionRequired  = []string{"title", "description", "start_date", "end_date", "status"}
	positionRequired  = []string{"name", "election", "max_candidates"}
	candidateRequired = []string{"student_id", "name", "position", "manifesto"}
)

// importDateLayouts are tried in order for start_date and end_date
var importDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type importExportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewImportExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ImportExportService {
	return &importExportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// csvRow gives column access by header name
type csvRow struct {
	line   int
	values []string
	index  map[string]int
}

func (r csvRow) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

// rowHandler upserts one row inside its own transaction and reports whether it created a record
type rowHandler func(ctx context.Context, tx *gorm.DB, row csvRow) (bool, error)

// runImport validates the header, then applies handle to every row. Rows that
// fail are rolled back individually and recorded in the report.
func (s *importExportService) runImport(ctx context.Context, entity string, r io.Reader, required []string, handle rowHandler) (*models.ImportReport, error) {
	s.logger.Info("Importing CSV", "entity", entity)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: csv file is empty", ErrValidationFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid csv header: %v", ErrValidationFailed, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[name] = i
	}
	for _, column := range required {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrValidationFailed, column)
		}
	}

	report := &models.ImportReport{Entity: entity, Errors: []models.ImportRowError{}}
	for {
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		line, _ := reader.FieldPos(0)
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			report.Total++
			report.AddError(line, fmt.Sprintf("malformed row: %v", err))
			continue
		}

		report.Total++
		row := csvRow{line: line, values: values, index: index}

		var created bool
		err = withTx(ctx, s.db, func(tx *gorm.DB) error {
			var rowErr error
			created, rowErr = handle(ctx, tx, row)
			return rowErr
		})
		switch {
		case err != nil:
			report.AddError(line, rowErrorMessage(err))
		case created:
			report.Created++
		default:
			report.Updated++
		}
	}

	cache.InvalidateAll(ctx, s.repo.Cache())
	publish(ctx, s.publisher, s.logger, events.EventImportCompleted, events.ImportCompletedEvent{
		Entity:  entity,
		Total:   report.Total,
		Created: report.Created,
		Updated: report.Updated,
		Skipped: report.Skipped,
	})

	s.logger.Info("CSV import finished", "entity", entity, "total", report.Total,
		"created", report.Created, "updated", report.Updated, "skipped", report.Skipped)
	return report, nil
}

func rowErrorMessage(err error) string {
	var validationErrors ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		parts := make([]string, 0, len(validationErrors))
		for _, ve := range validationErrors {
			parts = append(parts, ve.Field+" "+ve.Message)
		}
		return strings.Join(parts, "; ")
	}
	var ruleErr *BusinessRuleError
	if errors.As(err, &ruleErr) {
		return ruleErr.Message
	}
	return err.Error()
}

func parseImportDate(field, value string) (time.Time, error) {
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ValidationErrors{*NewValidationError(field, "is not a recognised date", value)}
}

// ===== IMPORTS =====

func (s *importExportService) ImportUsers(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	return s.runImport(ctx, "users", r, userRequired, s.importUserRow)
}

func (s *importExportService) importUserRow(ctx context.Context, tx *gorm.DB, row csvRow) (bool, error) {
	in := validator.UserImportRow{
		Username:   row.get("username"),
		FirstName:  row.get("first_name"),
		LastName:   row.get("last_name"),
		Email:      row.get("email"),
		StudentID:  row.get("student_id"),
		RollNumber: row.get("roll_number"),
		Department: row.get("department"),
		Year:       row.get("year"),
	}
	if err := s.validator.Validate(&in); err != nil {
		return false, err
	}

	created := false
	user, err := s.repo.User().GetByUsername(ctx, tx, in.Username)
	switch {
	case err == nil:
		user.FirstName = in.FirstName
		user.LastName = in.LastName
		user.Email = in.Email
		if err := s.repo.User().Update(ctx, tx, user); err != nil {
			return false, err
		}
	case repositories.IsNotFoundError(err):
		user = &models.User{
			Username:  in.Username,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			IsActive:  true,
		}
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			return false, err
		}
		created = true
	default:
		return false, err
	}

	if in.StudentID != "" || in.RollNumber != "" || in.Department != "" || in.Year != "" {
		year, _ := strconv.Atoi(in.Year)
		profile := &models.UserProfile{
			UserID:     user.ID,
			StudentID:  in.StudentID,
			RollNumber: in.RollNumber,
			Department: in.Department,
			Year:       year,
		}
		if err := s.repo.User().UpsertProfile(ctx, tx, profile); err != nil {
			return false, err
		}
	}

	return created, nil
}

func (s *importExportService) ImportElections(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	return s.runImport(ctx, "elections", r, electionRequired, s.importElectionRow)
}

func (s *importExportService) importElectionRow(ctx context.Context, tx *gorm.DB, row csvRow) (bool, error) {
	in := validator.ElectionImportRow{
		Title:       row.get("title"),
		Description: row.get("description"),
		StartDate:   row.get("start_date"),
		EndDate:     row.get("end_date"),
		Status:      strings.ToLower(row.get("status")),
	}
	if err := s.validator.Validate(&in); err != nil {
		return false, err
	}

	start, err := parseImportDate("start_date", in.StartDate)
	if err != nil {
		return false, err
	}
	end, err := parseImportDate("end_date", in.EndDate)
	if err != nil {
		return false, err
	}
	if errs := validator.ValidateDateRange(start, end); len(errs) > 0 {
		return false, errs
	}

	election, err := s.repo.Election().GetByTitle(ctx, tx, in.Title)
	switch {
	case err == nil:
		election.Description = in.Description
		election.StartDate = start
		election.EndDate = end
		election.Status = models.ElectionStatus(in.Status)
		return false, s.repo.Election().Update(ctx, tx, election)
	case repositories.IsNotFoundError(err):
		election = &models.Election{
			Title:       in.Title,
			Description: in.Description,
			StartDate:   start,
			EndDate:     end,
			Status:      models.ElectionStatus(in.Status),
		}
		return true, s.repo.Election().Create(ctx, tx, election)
	default:
		return false, err
	}
}

func (s *importExportService) ImportPositions(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	return s.runImport(ctx, "positions", r, positionRequired, s.importPositionRow)
}

func (s *importExportService) importPositionRow(ctx context.Context, tx *gorm.DB, row csvRow) (bool, error) {
	in := validator.PositionImportRow{
		Name:          row.get("name"),
		Election:      row.get("election"),
		MaxCandidates: row.get("max_candidates"),
	}
	if err := s.validator.Validate(&in); err != nil {
		return false, err
	}

	maxCandidates := 1
	if in.MaxCandidates != "" {
		maxCandidates, _ = strconv.Atoi(in.MaxCandidates)
		if maxCandidates < 1 || maxCandidates > 50 {
			return false, ValidationErrors{*NewValidationError("max_candidates", "must be between 1 and 50", in.MaxCandidates)}
		}
	}

	election, err := s.repo.Election().GetByTitle(ctx, tx, in.Election)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, fmt.Errorf("election %q not found", in.Election)
		}
		return false, err
	}

	position, err := s.repo.Position().GetByNameAndElection(ctx, tx, in.Name, election.ID)
	switch {
	case err == nil:
		position.MaxCandidates = maxCandidates
		return false, s.repo.Position().Update(ctx, tx, position)
	case repositories.IsNotFoundError(err):
		position = &models.Position{
			Name:          in.Name,
			ElectionID:    election.ID,
			MaxCandidates: maxCandidates,
		}
		return true, s.repo.Position().Create(ctx, tx, position)
	default:
		return false, err
	}
}

func (s *importExportService) ImportCandidates(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	return s.runImport(ctx, "candidates", r, candidateRequired, s.importCandidateRow)
}

func (s *importExportService) importCandidateRow(ctx context.Context, tx *gorm.DB, row csvRow) (bool, error) {
	in := validator.CandidateImportRow{
		StudentID: row.get("student_id"),
		Name:      row.get("name"),
		Position:  row.get("position"),
		Manifesto: row.get("manifesto"),
		Election:  row.get("election"),
	}
	if err := s.validator.Validate(&in); err != nil {
		return false, err
	}

	position, err := s.resolvePosition(ctx, tx, in.Position, in.Election)
	if err != nil {
		return false, err
	}

	candidate, err := s.repo.Candidate().GetByStudentID(ctx, tx, in.StudentID)
	switch {
	case err == nil:
		if candidate.PositionID != position.ID {
			votes, err := s.repo.Vote().CountByCandidate(ctx, tx, candidate.ID)
			if err != nil {
				return false, err
			}
			if votes > 0 {
				return false, NewBusinessRuleError("candidate_has_votes",
					fmt.Sprintf("candidate %s already has votes and cannot change position", in.StudentID), nil)
			}
		}
		candidate.Name = in.Name
		candidate.PositionID = position.ID
		candidate.Manifesto = in.Manifesto
		if err := s.repo.Candidate().Update(ctx, tx, candidate); err != nil {
			if repositories.IsForeignKeyError(err) {
				return false, NewBusinessRuleError("candidate_has_votes",
					fmt.Sprintf("candidate %s already has votes and cannot change position", in.StudentID), nil)
			}
			return false, err
		}
		return false, nil
	case repositories.IsNotFoundError(err):
		candidate = &models.Candidate{
			Name:       in.Name,
			StudentID:  in.StudentID,
			PositionID: position.ID,
			Manifesto:  in.Manifesto,
		}
		return true, s.repo.Candidate().Create(ctx, tx, candidate)
	default:
		return false, err
	}
}

// resolvePosition finds a position by name, using the election title when given
func (s *importExportService) resolvePosition(ctx context.Context, tx *gorm.DB, name, electionTitle string) (*models.Position, error) {
	if electionTitle != "" {
		election, err := s.repo.Election().GetByTitle(ctx, tx, electionTitle)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("election %q not found", electionTitle)
			}
			return nil, err
		}
		position, err := s.repo.Position().GetByNameAndElection(ctx, tx, name, election.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("position %q not found in election %q", name, electionTitle)
			}
			return nil, err
		}
		return position, nil
	}

	positions, err := s.repo.Position().FindByName(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	switch len(positions) {
	case 0:
		return nil, fmt.Errorf("position %q not found", name)
	case 1:
		return positions[0], nil
	default:
		return nil, fmt.Errorf("position %q exists in %d elections; add an election column", name, len(positions))
	}
}

// ===== EXPORTS =====

func (s *importExportService) ExportUsers(ctx context.Context, w io.Writer) error {
	users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Username, u.FirstName, u.LastName, u.Email})
	}
	return writeCSV(w, UserColumns, rows)
}

func (s *importExportService) ExportElections(ctx context.Context, w io.Writer) error {
	elections, _, err := s.repo.Election().List(ctx, nil, repositories.ElectionFilters{SortBy: "title", SortOrder: "asc"})
	if err != nil {
		return fmt.Errorf("failed to list elections: %w", err)
	}

	rows := make([][]string, 0, len(elections))
	for _, e := range elections {
		rows = append(rows, []string{
			e.Title,
			e.Description,
			e.StartDate.UTC().Format(time.RFC3339),
			e.EndDate.UTC().Format(time.RFC3339),
			string(e.Status),
		})
	}
	return writeCSV(w, ElectionColumns, rows)
}

func (s *importExportService) ExportPositions(ctx context.Context, w io.Writer) error {
	positions, _, err := s.repo.Position().List(ctx, nil, repositories.PositionFilters{})
	if err != nil {
		return fmt.Errorf("failed to list positions: %w", err)
	}

	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		election := ""
		if p.Election != nil {
			election = p.Election.Title
		}
		rows = append(rows, []string{p.Name, election, strconv.Itoa(p.MaxCandidates)})
	}
	return writeCSV(w, PositionColumns, rows)
}

func (s *importExportService) ExportCandidates(ctx context.Context, w io.Writer) error {
	candidates, _, err := s.repo.Candidate().List(ctx, nil, repositories.CandidateFilters{})
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}

	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		position := ""
		if c.Position != nil {
			position = c.Position.Name
		}
		rows = append(rows, []string{c.Name, c.StudentID, position, c.Manifesto})
	}
	return writeCSV(w, CandidateColumns, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
