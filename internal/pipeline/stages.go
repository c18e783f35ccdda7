package pipeline

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/jobs"
	"github.com/spigell/job-qualifier/internal/postings"
)

const (
	QualityStageName  = "quality"
	SkillsStageName   = "skills"
	TitleStageName    = "title"
	SanitizeStageName = "sanitize"
)

type Classifier interface {
	Classify(ctx context.Context, description, uid string) jobs.Classification
}

type SkillExtractor interface {
	Extract(ctx context.Context, description string) jobs.SkillSet
}

type TitleExtractor interface {
	Extract(ctx context.Context, contactInfo string) (string, bool)
}

type Sanitizer interface {
	Sanitise(ctx context.Context, description string) (string, error)
}

type qualityStage struct {
	toggle
	classifier  Classifier
	concurrency int
	logger      *zap.Logger
}

// NewQuality creates the stage that classifies every posting and drops the
// rejected ones.
func NewQuality(classifier Classifier, concurrency int, logger *zap.Logger) Stage {
	return &qualityStage{classifier: classifier, concurrency: concurrency, logger: nopIfNil(logger)}
}

func (s *qualityStage) Name() string { return QualityStageName }

func (s *qualityStage) Apply(ctx context.Context, batch *postings.Postings) (*postings.Postings, Step, error) {
	initial := batch.Len()

	err := forEach(ctx, batch, s.concurrency, func(ctx context.Context, posting *postings.Posting) {
		posting.Quality = postings.QualityFrom(s.classifier.Classify(ctx, posting.Description, posting.UID))
	})
	if err != nil {
		return batch, Step{}, err
	}

	accepted := make([]*postings.Posting, 0, initial)
	rejected := make([]string, 0)
	for _, posting := range batch.Items {
		if posting.Quality != nil && posting.Quality.Accepted {
			accepted = append(accepted, posting)
			continue
		}
		rejected = append(rejected, posting.UID)
	}
	batch.Items = accepted

	if len(rejected) > 0 {
		s.logger.Info("excluding low-quality postings",
			zap.Strings("excluded_postings", rejected),
			zap.Int("postings_left", batch.Len()),
		)
	}

	return batch, Step{Initial: initial, Dropped: len(rejected), Left: batch.Len()}, nil
}

func (s *qualityStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Details: concurrencyDetails(s.concurrency)}
}

type skillsStage struct {
	toggle
	extractor   SkillExtractor
	concurrency int
}

// NewSkills creates the stage that attaches the three skill tiers to every posting.
func NewSkills(extractor SkillExtractor, concurrency int) Stage {
	return &skillsStage{extractor: extractor, concurrency: concurrency}
}

func (s *skillsStage) Name() string { return SkillsStageName }

func (s *skillsStage) Apply(ctx context.Context, batch *postings.Postings) (*postings.Postings, Step, error) {
	initial := batch.Len()

	err := forEach(ctx, batch, s.concurrency, func(ctx context.Context, posting *postings.Posting) {
		skills := s.extractor.Extract(ctx, posting.Description)
		posting.Skills = &skills
	})
	if err != nil {
		return batch, Step{}, err
	}

	return batch, Step{Initial: initial, Left: batch.Len()}, nil
}

func (s *skillsStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Details: concurrencyDetails(s.concurrency)}
}

type titleStage struct {
	toggle
	extractor   TitleExtractor
	concurrency int
}

// NewTitle creates the stage that categorises the contact of every posting
// that has contact info.
func NewTitle(extractor TitleExtractor, concurrency int) Stage {
	return &titleStage{extractor: extractor, concurrency: concurrency}
}

func (s *titleStage) Name() string { return TitleStageName }

func (s *titleStage) Apply(ctx context.Context, batch *postings.Postings) (*postings.Postings, Step, error) {
	initial := batch.Len()

	err := forEach(ctx, batch, s.concurrency, func(ctx context.Context, posting *postings.Posting) {
		if strings.TrimSpace(posting.ContactInfo) == "" {
			return
		}
		if title, ok := s.extractor.Extract(ctx, posting.ContactInfo); ok {
			posting.TitleCategory = title
		}
	})
	if err != nil {
		return batch, Step{}, err
	}

	return batch, Step{Initial: initial, Left: batch.Len()}, nil
}

func (s *titleStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Details: concurrencyDetails(s.concurrency)}
}

type sanitizeStage struct {
	toggle
	sanitizer   Sanitizer
	concurrency int
}

// NewSanitize creates the stage that rewrites every description without
// identifying details. A failed rewrite is recorded on the posting.
func NewSanitize(sanitizer Sanitizer, concurrency int) Stage {
	return &sanitizeStage{sanitizer: sanitizer, concurrency: concurrency}
}

func (s *sanitizeStage) Name() string { return SanitizeStageName }

func (s *sanitizeStage) Apply(ctx context.Context, batch *postings.Postings) (*postings.Postings, Step, error) {
	initial := batch.Len()

	err := forEach(ctx, batch, s.concurrency, func(ctx context.Context, posting *postings.Posting) {
		text, err := s.sanitizer.Sanitise(ctx, posting.Description)
		if err != nil {
			posting.SanitiseError = err.Error()
			return
		}
		posting.Sanitised = text
	})
	if err != nil {
		return batch, Step{}, err
	}

	return batch, Step{Initial: initial, Left: batch.Len()}, nil
}

func (s *sanitizeStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason, Details: concurrencyDetails(s.concurrency)}
}

func concurrencyDetails(n int) map[string]string {
	if n <= 0 {
		n = DefaultConcurrency
	}
	return map[string]string{"concurrency": strconv.Itoa(n)}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
