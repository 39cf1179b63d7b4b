package pipeline

import (
	"context"
	"errors"
)

// RunAll executes the three pipelines in sequence: case extraction,
// legislation, then case analysis. caseCount bounds the judgment pipelines
// and actCount the legislation one (0 = no limit). A failed pipeline does
// not stop the later ones unless the context itself is done; all errors are
// reported together.
func (s *Session) RunAll(ctx context.Context, caseCount, actCount int) error {
	var errs []error

	if err := s.RunCaseExtraction(ctx, caseCount); err != nil {
		s.log.Errorf("Case extraction failed: %v", err)
		errs = append(errs, err)
	}
	if ctx.Err() != nil {
		return errors.Join(append(errs, ctx.Err())...)
	}

	if err := s.RunLegislation(ctx, actCount); err != nil {
		s.log.Errorf("Legislation scrape failed: %v", err)
		errs = append(errs, err)
	}
	if ctx.Err() != nil {
		return errors.Join(append(errs, ctx.Err())...)
	}

	if err := s.RunCaseAnalysis(ctx, nil, caseCount); err != nil {
		s.log.Errorf("Case analysis failed: %v", err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
