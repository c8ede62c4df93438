package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"thesaurus/internal/application"
	"thesaurus/internal/domain"
	"thesaurus/internal/metrics"
)

// FillOptions selects which computed literals are stored on each new concept
type FillOptions struct {
	Descriptor bool // Own label under Config.DescriptorProperty
	Path       bool // Ancestors and own label under Config.PathProperty
	Ascendance bool // Ancestors only under Config.AscendanceProperty
}

// ParseFillOptions parses a comma-separated list such as "descriptor,path"
func ParseFillOptions(s string) (FillOptions, error) {
	var fill FillOptions
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "descriptor":
			fill.Descriptor = true
		case "path":
			fill.Path = true
		case "ascendance":
			fill.Ascendance = true
		default:
			return fill, &application.ValidationError{Field: "fill", Message: fmt.Sprintf("unknown fill option: %s", part)}
		}
	}
	return fill, nil
}

// BuildFromOutlineResult contains the result of importing an outline
type BuildFromOutlineResult struct {
	RunID    string
	Scheme   *domain.Concept
	Created  int
	Tops     int
	Canceled bool
	Reindex  *domain.IndexStats
	Message  string
}

// BuildFromOutlineCommand creates a new scheme and concept graph from a
// plain-text outline, then indexes it
type BuildFromOutlineCommand struct {
	env       *Env
	Title     string
	Lines     []string
	Format    domain.OutlineFormat
	Fill      FillOptions
	Separator string // Joins path segments; defaults to Config.Separator
}

// NewBuildFromOutlineCommand creates a new BuildFromOutlineCommand
func NewBuildFromOutlineCommand(env *Env, title string, lines []string, format domain.OutlineFormat, fill FillOptions, separator string) *BuildFromOutlineCommand {
	return &BuildFromOutlineCommand{
		env:       env,
		Title:     title,
		Lines:     lines,
		Format:    format,
		Fill:      fill,
		Separator: separator,
	}
}

// Validate checks the command input and parses the outline
func (c *BuildFromOutlineCommand) Validate() error {
	_, err := c.parse()
	return err
}

func (c *BuildFromOutlineCommand) parse() ([]domain.OutlineEntry, error) {
	if err := application.ValidateRequired("title", c.Title); err != nil {
		return nil, err
	}

	cfg := c.env.Config
	if c.Fill.Descriptor && cfg.DescriptorProperty == "" {
		return nil, &application.ValidationError{Field: "fill", Message: "no descriptor property configured"}
	}
	if c.Fill.Path && cfg.PathProperty == "" {
		return nil, &application.ValidationError{Field: "fill", Message: "no path property configured"}
	}
	if c.Fill.Ascendance && cfg.AscendanceProperty == "" {
		return nil, &application.ValidationError{Field: "fill", Message: "no ascendance property configured"}
	}

	entries, err := domain.ParseOutline(c.Lines, c.Format)
	if err != nil {
		return nil, &application.ValidationError{Field: "lines", Message: err.Error()}
	}
	if len(entries) == 0 {
		return nil, &application.ValidationError{Field: "lines", Message: "outline is empty"}
	}
	return entries, nil
}

// Execute creates the scheme and its concepts in outline order, linking each
// concept to its parent with a level stack. Cancellation is honored between
// batches; concepts already created stay in the store.
func (c *BuildFromOutlineCommand) Execute(ctx context.Context) (*BuildFromOutlineResult, error) {
	entries, err := c.parse()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runID := newRunID()
	result := &BuildFromOutlineResult{RunID: runID}
	defer func() {
		metrics.JobDuration.WithLabelValues(metrics.JobImport).Observe(float64(time.Since(start).Milliseconds()))
	}()

	cfg := c.env.Config
	terms := cfg.Terms
	sep := c.Separator
	if sep == "" {
		sep = cfg.Separator
	}

	schemeData := domain.ConceptData{Title: c.Title, Classes: []string{cfg.Classes.Scheme}}
	if c.Fill.Descriptor {
		schemeData.Values = append(schemeData.Values, literal(cfg.DescriptorProperty, c.Title))
	}
	scheme, err := c.env.Store.Create(ctx, schemeData)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheme: %w", err)
	}
	result.Scheme = scheme
	log := c.env.Log.With("run_id", runID, "scheme_id", scheme.ID)
	log.Info("importing outline", "entries", len(entries), "format", c.Format.String())

	var (
		stack  []int64  // concept id per level
		titles []string // label per level
		links  []domain.Link
	)
	batchSize := c.env.batchSize()

	for i, e := range entries {
		stack = stack[:e.Level]
		titles = titles[:e.Level]

		data := domain.ConceptData{Title: e.Label, Classes: []string{cfg.Classes.Concept}}
		if c.Fill.Descriptor {
			data.Values = append(data.Values, literal(cfg.DescriptorProperty, e.Label))
		}
		if c.Fill.Path {
			data.Values = append(data.Values, literal(cfg.PathProperty, domain.JoinPath(append(append([]string{}, titles...), e.Label), sep)))
		}
		if c.Fill.Ascendance && len(titles) > 0 {
			data.Values = append(data.Values, literal(cfg.AscendanceProperty, domain.JoinPath(titles, sep)))
		}

		concept, err := c.env.Store.Create(ctx, data)
		if err != nil {
			return result, fmt.Errorf("line %d: failed to create concept: %w", e.Line, err)
		}
		result.Created++
		metrics.ConceptsCreated.Inc()

		links = append(links, domain.Link{Source: concept.ID, Term: terms.InScheme, Target: scheme.ID})
		if e.Level == 0 {
			links = append(links,
				domain.Link{Source: scheme.ID, Term: terms.HasTopConcept, Target: concept.ID},
				domain.Link{Source: concept.ID, Term: terms.TopConceptOf, Target: scheme.ID},
			)
			result.Tops++
		} else {
			parent := stack[e.Level-1]
			links = append(links,
				domain.Link{Source: parent, Term: terms.Narrower, Target: concept.ID},
				domain.Link{Source: concept.ID, Term: terms.Broader, Target: parent},
			)
		}
		stack = append(stack, concept.ID)
		titles = append(titles, e.Label)

		if (i+1)%batchSize != 0 && i != len(entries)-1 {
			continue
		}

		if err := c.env.Store.InsertLinks(ctx, links); err != nil {
			return result, fmt.Errorf("failed to link concepts: %w", err)
		}
		links = links[:0]
		metrics.BatchesCommitted.WithLabelValues(metrics.JobImport).Inc()
		log.Info("import batch done", "created", result.Created, "total", len(entries))
		c.env.clearCache()

		if i != len(entries)-1 {
			if err := ctx.Err(); err != nil {
				result.Canceled = true
				result.Message = fmt.Sprintf("Canceled after %d of %d concepts", result.Created, len(entries))
				log.Warn("import canceled", "created", result.Created, "total", len(entries))
				return result, err
			}
		}
	}

	reindex := NewReindexSchemeCommand(c.env, scheme.ID)
	reindex.RunID = runID
	res, err := reindex.Execute(ctx)
	if res != nil {
		result.Reindex = res.Stats
	}
	if err != nil && !errors.Is(err, application.ErrEmptyScheme) {
		return result, fmt.Errorf("index imported scheme: %w", err)
	}

	result.Message = fmt.Sprintf("Created scheme %d %q with %d concepts (%d top)", scheme.ID, scheme.Title, result.Created, result.Tops)
	log.Info("outline imported", "created", result.Created, "tops", result.Tops)
	return result, nil
}

func literal(term, text string) domain.Value {
	return domain.Value{Term: term, Type: domain.ValueLiteral, Literal: text}
}
