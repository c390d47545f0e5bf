package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bahnwerk/core/internal/domain/entities"
	"github.com/bahnwerk/core/internal/infrastructure/logger"
	"github.com/bahnwerk/core/internal/ports"
)

// Column names of the registration system's export. These are a
// compatibility surface; the producing system is not under our control.
const (
	colID       = "Id"
	colStatus   = "Status"
	colCategory = "Maßnahmenkategorie"
	colTitle    = "Titel"
	colVzg      = "VzG Streckennr."
	colBst      = "BSt von / BSt bis"
	colZeitraum = "Zeitraum"
)

var requiredColumns = []string{colID, colStatus, colCategory, colTitle, colVzg, colBst, colZeitraum}

// The export writes the Zeitraum either as one day with two times or as two
// full timestamps. The full-range pattern carries strictly more information
// and must be tried first; matching the single-day pattern first would
// silently drop the end date of a multi-day range.
var (
	zeitraumFullRange = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4}) (\d{2}:\d{2}) - (\d{2}\.\d{2}\.\d{4}) (\d{2}:\d{2})$`)
	zeitraumSingleDay = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4}) (\d{2}:\d{2}) - (\d{2}:\d{2})$`)
)

const zeitraumLayout = "02.01.2006 15:04"

// ImportService turns an uploaded export file into project candidates and
// commits the caller's selection to a task.
type ImportService struct {
	tasks    *TaskService
	stations ports.StationDirectory
	logger   *logger.Logger
	metrics  *Metrics
}

// NewImportService creates a new import service.
func NewImportService(tasks *TaskService, stations ports.StationDirectory, log *logger.Logger, metrics *Metrics) *ImportService {
	return &ImportService{
		tasks:    tasks,
		stations: stations,
		logger:   log,
		metrics:  metrics,
	}
}

// Preview parses the export file and normalizes every data row into a
// project candidate. Per-row defects (unparseable Zeitraum, unresolved
// station names) degrade to empty-field sentinels; the row is still offered.
// A malformed file fails as a whole and produces no candidates.
func (s *ImportService) Preview(r io.Reader) ([]entities.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse import file: missing header row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("parse import file: missing column %q", name)
		}
	}

	candidates := make([]entities.Project, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		candidates = append(candidates, s.normalizeRow(row, index))
		s.countRow("parsed")
	}
	return candidates, nil
}

// Commit adds the selected candidates to the task and returns the re-read
// task, so the result reflects the store rather than the local list.
func (s *ImportService) Commit(taskID string, selected []entities.Project) (*entities.Task, error) {
	task, err := s.tasks.CommitProjects(taskID, selected)
	if err != nil {
		return nil, err
	}
	for range selected {
		s.countRow("committed")
	}
	s.logger.LogImport(taskID, len(selected), len(selected))
	return task, nil
}

// normalizeRow builds a project candidate from one raw export row.
func (s *ImportService) normalizeRow(row []string, index map[string]int) entities.Project {
	field := func(name string) string {
		return strings.TrimSpace(row[index[name]])
	}

	startVzg, endVzg := splitPair(field(colVzg))
	startKurz, endKurz := splitPair(field(colBst))
	startBst := s.resolveStation(startKurz)
	endBst := s.resolveStation(endKurz)

	start, end := parseZeitraum(field(colZeitraum))
	if start == "" {
		s.countRow("unparsed_dates")
	}

	return entities.Project{
		ID:            uuid.NewString(),
		RegID:         registrationID(field(colID)),
		Status:        entities.ProjectStatus(field(colStatus)),
		Category:      field(colCategory),
		Title:         field(colTitle),
		StartVzg:      startVzg,
		EndVzg:        endVzg,
		StartBst:      startBst,
		EndBst:        endBst,
		StartDate:     start,
		EndDate:       end,
		Completed:     false,
		Notifications: []entities.Notification{},
		Comments:      []entities.Comment{},
		CreatedAt:     nowUTC(),
	}
}

// resolveStation maps an RL100 short name to its code, first match wins.
// Unresolved names yield the empty code, never an error.
func (s *ImportService) resolveStation(kurz string) string {
	if kurz == "" {
		return ""
	}
	rec, ok := s.stations.FindByShortName(kurz)
	if !ok {
		s.countRow("unresolved_station")
		return ""
	}
	return rec.RL100Code
}

func (s *ImportService) countRow(outcome string) {
	if s.metrics != nil {
		s.metrics.ImportRows.WithLabelValues(outcome).Inc()
	}
}

// registrationID extracts the registration id from the combined identifier,
// e.g. "BBMN-104233" yields "104233".
func registrationID(combined string) string {
	parts := strings.SplitN(combined, "-", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// parseZeitraum parses the free-text date-range field. Both results are the
// empty sentinel when neither pattern matches or a matched date is not a
// real calendar date.
func parseZeitraum(zeitraum string) (start, end string) {
	if m := zeitraumFullRange.FindStringSubmatch(zeitraum); m != nil {
		return formatRange(m[1]+" "+m[2], m[3]+" "+m[4])
	}
	if m := zeitraumSingleDay.FindStringSubmatch(zeitraum); m != nil {
		return formatRange(m[1]+" "+m[2], m[1]+" "+m[3])
	}
	return "", ""
}

func formatRange(rawStart, rawEnd string) (string, string) {
	start, err1 := time.Parse(zeitraumLayout, rawStart)
	end, err2 := time.Parse(zeitraumLayout, rawEnd)
	if err1 != nil || err2 != nil {
		return "", ""
	}
	return start.Format(entities.DateLayout), end.Format(entities.DateLayout)
}

// splitPair splits a combined "von - bis" field. A missing second side
// yields an empty string.
func splitPair(combined string) (string, string) {
	parts := strings.SplitN(combined, " - ", 2)
	if len(parts) < 2 {
		return strings.TrimSpace(parts[0]), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// detectDelimiter sniffs the header line: exports arrive both
// semicolon-delimited (German locale) and comma-delimited.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
