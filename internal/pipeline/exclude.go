package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/postings"
)

type excludeFileStage struct {
	toggle
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a stage that removes postings already present in a
// previous results file. A missing file excludes nothing.
func NewExcludeFile(path string, logger *zap.Logger) Stage {
	return &excludeFileStage{path: strings.TrimSpace(path), logger: nopIfNil(logger)}
}

func (s *excludeFileStage) Name() string { return "exclude_file" }

func (s *excludeFileStage) Apply(_ context.Context, batch *postings.Postings) (*postings.Postings, Step, error) {
	initial := batch.Len()
	if s.path == "" {
		return batch, Step{Initial: initial, Left: batch.Len()}, nil
	}

	processed, err := postings.FromFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return batch, Step{Initial: initial, Left: batch.Len()}, nil
	}
	if err != nil {
		return batch, Step{}, fmt.Errorf("getting processed postings from file: %w", err)
	}

	removed := batch.Exclude(postings.PostingUIDField, processed.UIDs())
	if len(removed) > 0 {
		s.logger.Info("excluding postings based on exclude file",
			zap.String("path", s.path),
			zap.Strings("excluded_postings", removed),
			zap.Int("postings_left", batch.Len()),
		)
	}

	return batch, Step{Initial: initial, Dropped: len(removed), Left: batch.Len()}, nil
}

func (s *excludeFileStage) Status() Status {
	details := map[string]string{}
	if s.path != "" {
		details["path"] = s.path
	}
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Details: details}
}

type rolesStage struct {
	toggle
	roles  []string
	logger *zap.Logger
}

// NewExcludedRoles creates a stage that removes classified postings whose role
// is one of roles. It has to run after the quality stage.
func NewExcludedRoles(roles []string, logger *zap.Logger) Stage {
	return &rolesStage{roles: roles, logger: nopIfNil(logger)}
}

func (s *rolesStage) Name() string { return "excluded_roles" }

func (s *rolesStage) Apply(_ context.Context, batch *postings.Postings) (*postings.Postings, Step, error) {
	initial := batch.Len()
	if len(s.roles) == 0 {
		return batch, Step{Initial: initial, Left: batch.Len()}, nil
	}

	excluded := batch.Exclude(postings.PostingRoleField, s.roles)
	if len(excluded) > 0 {
		s.logger.Info("excluding postings by roles",
			zap.Strings("excluded_roles", s.roles),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", batch.Len()),
		)
	}

	return batch, Step{Initial: initial, Dropped: len(excluded), Left: batch.Len()}, nil
}

func (s *rolesStage) Status() Status {
	details := map[string]string{}
	if len(s.roles) > 0 {
		details["roles"] = strings.Join(s.roles, ",")
	}
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Details: details}
}
