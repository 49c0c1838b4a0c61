package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/mtm/internal/analysis"
	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
	"github.com/custodia-labs/mtm/internal/logger"
	"github.com/custodia-labs/mtm/internal/metrics"
)

// Ensure ThemeService implements the interface.
var _ driving.ThemeService = (*ThemeService)(nil)

// ThemeService runs the theme engine over stored segments.
type ThemeService struct {
	segments driven.SegmentStore
	themes   driven.ThemeStore
	engine   *analysis.Engine
	timeout  time.Duration
	now      func() time.Time

	// One analysis at a time per project.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewThemeService creates a theme service configured from settings.
func NewThemeService(segments driven.SegmentStore, themes driven.ThemeStore, settings domain.AnalysisSettings) *ThemeService {
	return &ThemeService{
		segments: segments,
		themes:   themes,
		engine: analysis.NewEngine(
			analysis.WithK(settings.KMeansK),
			analysis.WithMinSupport(settings.MinThemeSupport),
			analysis.WithSeed(settings.Seed),
		),
		timeout: settings.Timeout,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Analyze discovers and stores themes for one project.
// Returns domain.ErrAnalysisInProgress if the project is already being analysed.
func (s *ThemeService) Analyze(ctx context.Context, project string) (*driving.ThemeReport, error) {
	lock := s.projectLock(project)
	if !lock.TryLock() {
		return nil, fmt.Errorf("%w: project %q", domain.ErrAnalysisInProgress, displayProject(project))
	}
	defer lock.Unlock()

	segments, err := s.segments.ListSegments(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	docs := make([]analysis.Document, 0, len(segments))
	noteOf := make(map[string]string, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Content) == "" {
			continue
		}
		docs = append(docs, analysis.Document{ID: seg.ID, Text: seg.Content})
		noteOf[seg.ID] = seg.NoteID
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := logger.WithFields(logger.Fields{"project": displayProject(project), "segments": len(docs)})
	log.Debugf("analysing themes using %s", s.engine.StrategyFor(len(docs)))

	started := time.Now()
	result, err := s.engine.Run(runCtx, docs)
	if err != nil {
		var analysisErr *domain.AnalysisError
		if errors.As(err, &analysisErr) {
			analysisErr.Project = project
		}
		return nil, err
	}
	metrics.AnalysisDuration.WithLabelValues(result.Strategy.String()).Observe(time.Since(started).Seconds())

	now := s.now()
	themes := make([]domain.Theme, 0, len(result.Drafts))
	for _, draft := range result.Drafts {
		var noteID string
		if len(draft.SegmentIDs) > 0 {
			noteID = noteOf[draft.SegmentIDs[0]]
		}
		theme, err := domain.NewTheme(uuid.New().String(), project, draft, noteID, now)
		if err != nil {
			return nil, fmt.Errorf("build theme: %w", err)
		}
		themes = append(themes, *theme)
	}

	if len(themes) > 0 {
		if err := s.themes.SaveThemes(ctx, themes); err != nil {
			return nil, fmt.Errorf("save themes: %w", err)
		}
	}
	metrics.ThemesEmitted.WithLabelValues(result.Strategy.String()).Add(float64(len(themes)))

	if result.Relaxed {
		log.Warnf("vectorisation needed relaxed document-frequency bounds")
	}
	log.Infof("stored %d themes (%s)", len(themes), result.Strategy)

	return &driving.ThemeReport{
		Project:      project,
		Strategy:     result.Strategy,
		Relaxed:      result.Relaxed,
		SegmentCount: len(docs),
		Themes:       themes,
	}, nil
}

// AnalyzeAll analyses each project concurrently. With no projects given,
// every project with segments is analysed. Reports keep the input order.
func (s *ThemeService) AnalyzeAll(ctx context.Context, projects []string) ([]driving.ThemeReport, error) {
	if len(projects) == 0 {
		var err error
		projects, err = s.segments.ListProjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
	}

	reports := make([]driving.ThemeReport, len(projects))

	// Failures are recorded per project, so the group never cancels siblings.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, project := range projects {
		g.Go(func() error {
			report, err := s.Analyze(ctx, project)
			if err != nil {
				logger.WithFields(logger.Fields{"project": displayProject(project)}).Warnf("analysis failed: %v", err)
				reports[i] = driving.ThemeReport{Project: project, Err: err}
				return nil
			}
			reports[i] = *report
			return nil
		})
	}
	_ = g.Wait()

	return reports, nil
}

// List returns stored themes for a project ("" for all).
func (s *ThemeService) List(ctx context.Context, project string) ([]domain.Theme, error) {
	themes, err := s.themes.ListThemes(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	return themes, nil
}

func (s *ThemeService) projectLock(project string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[project]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[project] = lock
	}
	return lock
}

func displayProject(project string) string {
	if project == "" {
		return domain.GlobalProject
	}
	return project
}
